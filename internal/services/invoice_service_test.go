package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

func TestCreateInvoice_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	svc := NewInvoiceService(s)
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	rec, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		CustomerID:    42,
		InvoiceNumber: "INV-CUSTOM-1",
		Amount:        dec("1500.50"),
		Currency:      models.CurrencyVES,
		DueDate:       due,
		Description:   "bulk order",
	})
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.NotEmpty(t, rec.UUID)
	assert.Equal(t, models.AccountStatusPending, rec.Status)

	got, err := s.Receivables().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-CUSTOM-1", got.InvoiceNumber)
	assert.Equal(t, uint(42), got.CustomerID)
	assert.True(t, got.Amount.Equal(dec("1500.50")))
	assert.Equal(t, models.CurrencyVES, got.Currency)
	assert.Equal(t, due, got.DueDate)
	assert.Equal(t, "bulk order", got.Description)
}

func TestCreateInvoice_GeneratesNumber(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(store.NewMemStore())
	due := time.Now().AddDate(0, 1, 0)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		rec, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
			CustomerID: 1,
			Amount:     dec("10"),
			Currency:   models.CurrencyUSD,
			DueDate:    due,
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(rec.InvoiceNumber, "INV-"))
		assert.False(t, seen[rec.InvoiceNumber], "duplicate generated number %s", rec.InvoiceNumber)
		seen[rec.InvoiceNumber] = true
	}
}

func TestCreateInvoice_DuplicateNumberConflicts(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(store.NewMemStore())
	in := CreateInvoiceInput{
		CustomerID:    1,
		InvoiceNumber: "INV-DUP",
		Amount:        dec("10"),
		Currency:      models.CurrencyUSD,
		DueDate:       time.Now().AddDate(0, 1, 0),
	}

	_, err := svc.CreateInvoice(ctx, in)
	require.NoError(t, err)

	_, err = svc.CreateInvoice(ctx, in)
	assert.True(t, apperr.IsConflict(err))
}

func TestCreateInvoice_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(store.NewMemStore())
	due := time.Now().AddDate(0, 1, 0)

	tests := []struct {
		name string
		in   CreateInvoiceInput
	}{
		{"zero amount", CreateInvoiceInput{CustomerID: 1, Amount: dec("0"), Currency: models.CurrencyUSD, DueDate: due}},
		{"negative amount", CreateInvoiceInput{CustomerID: 1, Amount: dec("-5"), Currency: models.CurrencyUSD, DueDate: due}},
		{"bad currency", CreateInvoiceInput{CustomerID: 1, Amount: dec("10"), Currency: "EUR", DueDate: due}},
		{"no due date", CreateInvoiceInput{CustomerID: 1, Amount: dec("10"), Currency: models.CurrencyUSD}},
		{"no customer", CreateInvoiceInput{Amount: dec("10"), Currency: models.CurrencyUSD, DueDate: due}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateInvoice(ctx, tc.in)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestCreateBill_EntityIdentity(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(store.NewMemStore())
	due := time.Now().AddDate(0, 1, 0)
	supplierID := uint(7)

	base := CreateBillInput{Amount: dec("10"), Currency: models.CurrencyUSD, DueDate: due}

	tests := []struct {
		name       string
		entityType models.PayableEntityType
		supplierID *uint
		entityName string
		wantErr    bool
	}{
		{"supplier with id", models.PayableEntitySupplier, &supplierID, "", false},
		{"supplier without id", models.PayableEntitySupplier, nil, "", true},
		{"supplier with both", models.PayableEntitySupplier, &supplierID, "acme", true},
		{"utility with name", models.PayableEntityUtility, nil, "electric co", false},
		{"utility without name", models.PayableEntityUtility, nil, "", true},
		{"general with supplier id", models.PayableEntityGeneral, &supplierID, "misc", true},
		{"unknown type", "partner", nil, "x", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			in.EntityType = tc.entityType
			in.SupplierID = tc.supplierID
			in.EntityName = tc.entityName
			p, err := svc.CreateBill(ctx, in)
			if tc.wantErr {
				assert.True(t, apperr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(p.BillNumber, "BILL-"))
			assert.Equal(t, models.AccountStatusPending, p.Status)
		})
	}
}
