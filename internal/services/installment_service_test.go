package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

func newPlan(t *testing.T, s store.Store, total string, n int, freq models.InstallmentFrequency, first time.Time) *models.PaymentPlan {
	t.Helper()
	svc := NewInstallmentService(s)
	plan, err := svc.CreatePaymentPlan(context.Background(), CreatePlanInput{
		SaleID:               10,
		CustomerID:           20,
		TotalAmount:          dec(total),
		Currency:             models.CurrencyUSD,
		NumberOfInstallments: n,
		Frequency:            freq,
		FirstPaymentDate:     first,
	})
	require.NoError(t, err)
	return plan
}

func TestCreatePaymentPlan_SplitsExactly(t *testing.T) {
	first := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	plan := newPlan(t, store.NewMemStore(), "100", 3, models.FrequencyMonthly, first)

	require.Len(t, plan.Installments, 3)
	assert.True(t, plan.Installments[0].Amount.Equal(dec("33.33")))
	assert.True(t, plan.Installments[1].Amount.Equal(dec("33.33")))
	assert.True(t, plan.Installments[2].Amount.Equal(dec("33.34")))

	total := decimal.Zero
	for _, inst := range plan.Installments {
		total = total.Add(inst.Amount)
	}
	assert.True(t, total.Equal(dec("100")), "no rounding residue")

	// monthly cadence from the first payment date
	assert.Equal(t, first, plan.Installments[0].DueDate)
	assert.Equal(t, first.AddDate(0, 1, 0), plan.Installments[1].DueDate)
	assert.Equal(t, first.AddDate(0, 2, 0), plan.Installments[2].DueDate)

	// contiguous numbering from 1
	for i, inst := range plan.Installments {
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.Equal(t, models.AccountStatusPending, inst.Status)
		assert.True(t, inst.PaidAmount.IsZero())
	}
	assert.Equal(t, models.PlanStatusActive, plan.Status)
}

func TestCreatePaymentPlan_SplitTable(t *testing.T) {
	tests := []struct {
		total string
		n     int
		want  []string
	}{
		{"100", 3, []string{"33.33", "33.33", "33.34"}},
		{"100", 4, []string{"25", "25", "25", "25"}},
		{"0.05", 2, []string{"0.02", "0.03"}},
		{"999.99", 7, []string{"142.85", "142.85", "142.85", "142.85", "142.85", "142.85", "142.89"}},
		{"50", 1, []string{"50"}},
	}

	for _, tc := range tests {
		t.Run(tc.total, func(t *testing.T) {
			got := splitAmount(dec(tc.total), tc.n)
			require.Len(t, got, tc.n)
			sum := decimal.Zero
			for i, amount := range got {
				assert.True(t, amount.Equal(dec(tc.want[i])), "slice %d: got %s want %s", i, amount, tc.want[i])
				sum = sum.Add(amount)
			}
			assert.True(t, sum.Equal(dec(tc.total)))
		})
	}
}

func TestCreatePaymentPlan_Frequencies(t *testing.T) {
	first := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	weekly := newPlan(t, store.NewMemStore(), "300", 3, models.FrequencyWeekly, first)
	assert.Equal(t, first.AddDate(0, 0, 7), weekly.Installments[1].DueDate)
	assert.Equal(t, first.AddDate(0, 0, 14), weekly.Installments[2].DueDate)

	biweekly := newPlan(t, store.NewMemStore(), "300", 3, models.FrequencyBiweekly, first)
	assert.Equal(t, first.AddDate(0, 0, 14), biweekly.Installments[1].DueDate)
	assert.Equal(t, first.AddDate(0, 0, 28), biweekly.Installments[2].DueDate)
}

func TestCreatePaymentPlan_Validation(t *testing.T) {
	svc := NewInstallmentService(store.NewMemStore())
	ctx := context.Background()
	first := time.Now()

	cases := []CreatePlanInput{
		{SaleID: 0, CustomerID: 1, TotalAmount: dec("10"), Currency: models.CurrencyUSD, NumberOfInstallments: 2, Frequency: models.FrequencyWeekly, FirstPaymentDate: first},
		{SaleID: 1, CustomerID: 0, TotalAmount: dec("10"), Currency: models.CurrencyUSD, NumberOfInstallments: 2, Frequency: models.FrequencyWeekly, FirstPaymentDate: first},
		{SaleID: 1, CustomerID: 1, TotalAmount: dec("0"), Currency: models.CurrencyUSD, NumberOfInstallments: 2, Frequency: models.FrequencyWeekly, FirstPaymentDate: first},
		{SaleID: 1, CustomerID: 1, TotalAmount: dec("10"), Currency: "EUR", NumberOfInstallments: 2, Frequency: models.FrequencyWeekly, FirstPaymentDate: first},
		{SaleID: 1, CustomerID: 1, TotalAmount: dec("10"), Currency: models.CurrencyUSD, NumberOfInstallments: 0, Frequency: models.FrequencyWeekly, FirstPaymentDate: first},
		{SaleID: 1, CustomerID: 1, TotalAmount: dec("10"), Currency: models.CurrencyUSD, NumberOfInstallments: 2, Frequency: "daily", FirstPaymentDate: first},
		{SaleID: 1, CustomerID: 1, TotalAmount: dec("10"), Currency: models.CurrencyUSD, NumberOfInstallments: 2, Frequency: models.FrequencyWeekly},
	}
	for i, in := range cases {
		_, err := svc.CreatePaymentPlan(ctx, in)
		assert.True(t, apperr.IsValidation(err), "case %d", i)
	}
}

func TestProcessInstallmentPayment_PartialThenPaid(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	plan := newPlan(t, s, "100", 2, models.FrequencyWeekly, time.Now())
	svc := NewInstallmentService(s)
	instID := plan.Installments[0].ID

	inst, err := svc.ProcessInstallmentPayment(ctx, instID, dec("20"), models.PaymentMethodUSD, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPartial, inst.Status)
	assert.Nil(t, inst.PaidAt)
	assert.True(t, inst.PaidAmount.Equal(dec("20")))

	inst, err = svc.ProcessInstallmentPayment(ctx, instID, dec("30"), models.PaymentMethodUSD, "r2")
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPaid, inst.Status)
	require.NotNil(t, inst.PaidAt, "paid timestamp set on transition to paid")
	assert.True(t, inst.PaidAmount.Equal(dec("50")))

	// paying a settled installment is a conflict
	_, err = svc.ProcessInstallmentPayment(ctx, instID, dec("1"), models.PaymentMethodUSD, "")
	assert.True(t, apperr.IsConflict(err))
}

func TestProcessInstallmentPayment_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewInstallmentService(store.NewMemStore())

	_, err := svc.ProcessInstallmentPayment(ctx, 1, dec("0"), models.PaymentMethodUSD, "")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.ProcessInstallmentPayment(ctx, 999, dec("10"), models.PaymentMethodUSD, "")
	assert.True(t, apperr.IsNotFound(err))
}

func TestProcessInstallmentPayment_ClampsOvershoot(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	plan := newPlan(t, s, "100", 2, models.FrequencyWeekly, time.Now())
	svc := NewInstallmentService(s)

	inst, err := svc.ProcessInstallmentPayment(ctx, plan.Installments[0].ID, dec("75"), models.PaymentMethodUSD, "")
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusPaid, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(inst.Amount), "paid amount capped at the slice amount")
}

func TestProcessInstallmentPayment_CancelledPlan(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	plan := newPlan(t, s, "100", 2, models.FrequencyWeekly, time.Now())
	svc := NewInstallmentService(s)

	require.NoError(t, svc.CancelPlan(ctx, plan.ID))

	// installments of a cancelled plan no longer take money
	_, err := svc.ProcessInstallmentPayment(ctx, plan.Installments[0].ID, dec("50"), models.PaymentMethodUSD, "")
	assert.True(t, apperr.IsConflict(err))

	got, err := s.Installments().GetByID(ctx, plan.Installments[0].ID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.IsZero(), "rejected payment must not touch the installment")
	assert.Equal(t, models.AccountStatusPending, got.Status)
}

func TestCheckPlanCompletion(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	plan := newPlan(t, s, "100", 2, models.FrequencyWeekly, time.Now())
	svc := NewInstallmentService(s)

	// unpaid installments: no completion
	require.NoError(t, svc.CheckPlanCompletion(ctx, plan.ID))
	got, err := svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusActive, got.Status)

	// pay everything; the last payment flips the plan
	for _, inst := range plan.Installments {
		_, err := svc.ProcessInstallmentPayment(ctx, inst.ID, dec("50"), models.PaymentMethodUSD, "")
		require.NoError(t, err)
	}
	got, err = svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusCompleted, got.Status)

	// re-invoking is a no-op, never completed -> active
	require.NoError(t, svc.CheckPlanCompletion(ctx, plan.ID))
	got, err = svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusCompleted, got.Status)
}

func TestCancelPlan(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	plan := newPlan(t, s, "100", 2, models.FrequencyWeekly, time.Now())
	svc := NewInstallmentService(s)

	require.NoError(t, svc.CancelPlan(ctx, plan.ID))

	got, err := svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusCancelled, got.Status)

	// cancelling twice is a conflict
	err = svc.CancelPlan(ctx, plan.ID)
	assert.True(t, apperr.IsConflict(err))

	err = svc.CancelPlan(ctx, 999)
	assert.True(t, apperr.IsNotFound(err))
}
