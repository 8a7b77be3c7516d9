package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

func TestOutstandingSummary(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	due := time.Now().AddDate(0, 1, 0)
	inv := NewInvoiceService(s)

	// receivables: 1000 USD with 400 collected, 3650 VES untouched
	usdRec, err := inv.CreateInvoice(ctx, CreateInvoiceInput{CustomerID: 1, Amount: dec("1000"), Currency: models.CurrencyUSD, DueDate: due})
	require.NoError(t, err)
	_, err = inv.CreateInvoice(ctx, CreateInvoiceInput{CustomerID: 2, Amount: dec("3650"), Currency: models.CurrencyVES, DueDate: due})
	require.NoError(t, err)

	_, err = NewPaymentService(s).RecordPayment(ctx, RecordPaymentInput{
		AccountID:   usdRec.ID,
		AccountType: models.AccountTypeReceivable,
		Amount:      dec("400"),
		Currency:    models.CurrencyUSD,
		Method:      models.PaymentMethodUSD,
	})
	require.NoError(t, err)

	// one payable of 250 USD
	_, err = inv.CreateBill(ctx, CreateBillInput{
		EntityType: models.PayableEntityUtility,
		EntityName: "water co",
		Amount:     dec("250"),
		Currency:   models.CurrencyUSD,
		DueDate:    due,
	})
	require.NoError(t, err)

	rate := func() decimal.Decimal { return dec("36.50") }
	summary, err := NewSummaryService(s, rate).OutstandingSummary(ctx)
	require.NoError(t, err)

	assert.True(t, summary.ReceivablesUSD.Equal(dec("600")), "got %s", summary.ReceivablesUSD)
	assert.True(t, summary.ReceivablesVES.Equal(dec("3650")))
	assert.True(t, summary.PayablesUSD.Equal(dec("250")))
	assert.True(t, summary.PayablesVES.IsZero())

	// 3650 VES at 36.50 per USD is 100 USD
	assert.True(t, summary.ReceivablesUSDEquivalent.Equal(dec("700")), "got %s", summary.ReceivablesUSDEquivalent)
	assert.True(t, summary.PayablesUSDEquivalent.Equal(dec("250")))
}

func TestOutstandingSummary_NilExchange(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	due := time.Now().AddDate(0, 1, 0)

	_, err := NewInvoiceService(s).CreateInvoice(ctx, CreateInvoiceInput{CustomerID: 1, Amount: dec("500"), Currency: models.CurrencyVES, DueDate: due})
	require.NoError(t, err)

	summary, err := NewSummaryService(s, nil).OutstandingSummary(ctx)
	require.NoError(t, err)
	assert.True(t, summary.ReceivablesVES.Equal(dec("500")))

	// without a rate the equivalent covers only the USD side
	assert.True(t, summary.ReceivablesUSDEquivalent.IsZero())
}
