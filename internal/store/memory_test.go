package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
)

func seedReceivable(t *testing.T, s Store, number string, customerID uint, amount string, due time.Time) *models.AccountReceivable {
	t.Helper()
	rec := &models.AccountReceivable{
		UUID:          number + "-uuid",
		CustomerID:    customerID,
		InvoiceNumber: number,
		Amount:        decimal.RequireFromString(amount),
		Currency:      models.CurrencyUSD,
		DueDate:       due,
		Status:        models.AccountStatusPending,
	}
	require.NoError(t, s.Receivables().Create(context.Background(), rec))
	return rec
}

func TestMemStore_AtomicRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	rec := seedReceivable(t, s, "INV-1", 1, "100", time.Now())

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx Store) error {
		if err := tx.Payments().Create(ctx, &models.Payment{
			AccountID:     rec.ID,
			AccountType:   models.AccountTypeReceivable,
			Amount:        decimal.RequireFromString("40"),
			Currency:      models.CurrencyUSD,
			PaymentMethod: models.PaymentMethodUSD,
			ProcessedAt:   time.Now(),
		}); err != nil {
			return err
		}
		if err := tx.Receivables().UpdateStatus(ctx, rec.ID, models.AccountStatusPartial); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// both writes rolled back
	got, err := s.Receivables().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPending, got.Status)

	payments, err := s.Payments().ListByAccount(ctx, rec.ID, models.AccountTypeReceivable)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestMemStore_AtomicCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	rec := seedReceivable(t, s, "INV-1", 1, "100", time.Now())

	err := s.Atomic(ctx, func(tx Store) error {
		return tx.Receivables().UpdateStatus(ctx, rec.ID, models.AccountStatusPaid)
	})
	require.NoError(t, err)

	got, err := s.Receivables().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPaid, got.Status)
}

func TestMemStore_NestedAtomicJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	rec := seedReceivable(t, s, "INV-1", 1, "100", time.Now())

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx Store) error {
		if err := tx.Atomic(ctx, func(inner Store) error {
			return inner.Receivables().UpdateStatus(ctx, rec.ID, models.AccountStatusPaid)
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// the inner write unwinds with the outer unit
	got, err := s.Receivables().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPending, got.Status)
}

func TestMemReceivables_UniqueInvoiceNumber(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	seedReceivable(t, s, "INV-1", 1, "100", time.Now())

	err := s.Receivables().Create(ctx, &models.AccountReceivable{
		UUID:          "dup-uuid",
		CustomerID:    2,
		InvoiceNumber: "INV-1",
		Amount:        decimal.RequireFromString("50"),
		Currency:      models.CurrencyUSD,
		DueDate:       time.Now(),
		Status:        models.AccountStatusPending,
	})
	assert.True(t, apperr.IsConflict(err))
}

func TestMemReceivables_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	now := time.Now()

	seedReceivable(t, s, "INV-1", 1, "100", now.AddDate(0, 0, 1))
	seedReceivable(t, s, "INV-2", 1, "200", now.AddDate(0, 0, 5))
	seedReceivable(t, s, "INV-3", 2, "300", now.AddDate(0, 0, 3))

	customer := uint(1)
	recs, err := s.Receivables().List(ctx, ReceivableFilter{CustomerID: &customer})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// ordered by due date ascending
	assert.Equal(t, "INV-1", recs[0].InvoiceNumber)
	assert.Equal(t, "INV-2", recs[1].InvoiceNumber)

	dueTo := now.AddDate(0, 0, 4)
	recs, err = s.Receivables().List(ctx, ReceivableFilter{DueTo: &dueTo})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	status := models.AccountStatusPaid
	recs, err = s.Receivables().List(ctx, ReceivableFilter{Status: &status})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMemPayments_SumFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	pay := func(accountID uint, amount string, currency models.Currency) {
		require.NoError(t, s.Payments().Create(ctx, &models.Payment{
			AccountID:     accountID,
			AccountType:   models.AccountTypeReceivable,
			Amount:        decimal.RequireFromString(amount),
			Currency:      currency,
			PaymentMethod: models.PaymentMethodUSD,
			ProcessedAt:   time.Now(),
		}))
	}
	pay(1, "100", models.CurrencyUSD)
	pay(1, "50", models.CurrencyVES)
	pay(2, "25", models.CurrencyUSD)

	total, err := s.Payments().Sum(ctx, 1, models.AccountTypeReceivable, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("150")))

	usd := models.CurrencyUSD
	total, err = s.Payments().Sum(ctx, 1, models.AccountTypeReceivable, &usd)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("100")))

	sums, err := s.Payments().SumByAccountIDs(ctx, models.AccountTypeReceivable, []uint{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, sums[1].Equal(decimal.RequireFromString("150")))
	assert.True(t, sums[2].Equal(decimal.RequireFromString("25")))
	assert.True(t, sums[3].IsZero())
}
