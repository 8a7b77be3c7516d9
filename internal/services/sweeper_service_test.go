package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

func billFor(t *testing.T, s store.Store, amount string, dueDate time.Time) *models.AccountPayable {
	t.Helper()
	p, err := NewInvoiceService(s).CreateBill(context.Background(), CreateBillInput{
		EntityType: models.PayableEntityUtility,
		EntityName: "electric co",
		Amount:     dec(amount),
		Currency:   models.CurrencyUSD,
		DueDate:    dueDate,
	})
	require.NoError(t, err)
	return p
}

func TestMarkOverdueReceivables_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	now := time.Now()

	past := invoiceFor(t, s, 1, "100", now.AddDate(0, 0, -3))
	future := invoiceFor(t, s, 1, "100", now.AddDate(0, 0, 3))

	svc := NewSweeperService(s)
	n, err := svc.MarkOverdueReceivables(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.Receivables().GetByID(ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusOverdue, got.Status)

	got, err = s.Receivables().GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPending, got.Status)

	// second run finds nothing left to flag
	n, err = svc.MarkOverdueReceivables(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMarkOverdueReceivables_SkipsSettled(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	now := time.Now()

	rec := invoiceFor(t, s, 1, "100", now.AddDate(0, 0, -3))
	_, err := NewPaymentService(s).RecordPayment(ctx, RecordPaymentInput{
		AccountID:   rec.ID,
		AccountType: models.AccountTypeReceivable,
		Amount:      dec("100"),
		Currency:    models.CurrencyUSD,
		Method:      models.PaymentMethodUSD,
	})
	require.NoError(t, err)

	n, err := NewSweeperService(s).MarkOverdueReceivables(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err := s.Receivables().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPaid, got.Status)
}

func TestMarkOverduePayables(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	now := time.Now()

	billFor(t, s, "100", now.AddDate(0, 0, -1))
	billFor(t, s, "100", now.AddDate(0, 0, 1))

	n, err := NewSweeperService(s).MarkOverduePayables(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMarkOverdueInstallments_PendingOnly(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	now := time.Now()

	plan := newPlan(t, s, "100", 2, models.FrequencyWeekly, now.AddDate(0, 0, -21))

	// a partial payment on the first slice keeps it out of the sweep
	_, err := NewInstallmentService(s).ProcessInstallmentPayment(ctx, plan.Installments[0].ID, dec("10"), models.PaymentMethodUSD, "")
	require.NoError(t, err)

	n, err := NewSweeperService(s).MarkOverdueInstallments(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	first, err := s.Installments().GetByID(ctx, plan.Installments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPartial, first.Status)

	second, err := s.Installments().GetByID(ctx, plan.Installments[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusOverdue, second.Status)
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	now := time.Now()

	invoiceFor(t, s, 1, "100", now.AddDate(0, 0, -3))
	invoiceFor(t, s, 2, "100", now.AddDate(0, 0, -3))
	billFor(t, s, "100", now.AddDate(0, 0, -1))
	newPlan(t, s, "100", 2, models.FrequencyWeekly, now.AddDate(0, 0, -10))

	result, err := NewSweeperService(s).RunAll(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Receivables)
	assert.Equal(t, int64(1), result.Payables)
	assert.Equal(t, int64(2), result.Installments)
}
