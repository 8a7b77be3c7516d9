package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountStatus_IsValid(t *testing.T) {
	tests := []struct {
		status   AccountStatus
		expected bool
	}{
		{AccountStatusPending, true},
		{AccountStatusPartial, true},
		{AccountStatusPaid, true},
		{AccountStatusOverdue, true},
		{AccountStatus("INVALID"), false},
		{AccountStatus(""), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.IsValid())
		})
	}
}

func TestAccountStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   AccountStatus
		expected bool
	}{
		{AccountStatusPending, false},
		{AccountStatusPartial, false},
		{AccountStatusOverdue, false},
		{AccountStatusPaid, true},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.IsTerminal())
		})
	}
}

func TestAccountStatus_IsOutstanding(t *testing.T) {
	assert.True(t, AccountStatusPending.IsOutstanding())
	assert.True(t, AccountStatusPartial.IsOutstanding())
	assert.True(t, AccountStatusOverdue.IsOutstanding())
	assert.False(t, AccountStatusPaid.IsOutstanding())
}

func TestCurrency_IsValid(t *testing.T) {
	assert.True(t, CurrencyUSD.IsValid())
	assert.True(t, CurrencyVES.IsValid())
	assert.False(t, Currency("EUR").IsValid())
	assert.False(t, Currency("").IsValid())
}

func TestPayableEntityType_IsValid(t *testing.T) {
	valid := []PayableEntityType{
		PayableEntitySupplier, PayableEntityCompany, PayableEntityUtility,
		PayableEntityInstitution, PayableEntityGeneral,
	}
	for _, et := range valid {
		assert.True(t, et.IsValid(), string(et))
	}
	assert.False(t, PayableEntityType("bank").IsValid())
}

func TestPaymentMethod_IsValid(t *testing.T) {
	valid := []PaymentMethod{
		PaymentMethodUSD, PaymentMethodVES, PaymentMethodMixed, PaymentMethodZelle,
	}
	for _, m := range valid {
		assert.True(t, m.IsValid(), string(m))
	}
	assert.False(t, PaymentMethod("card").IsValid())
}

func TestPlanStatus_IsValid(t *testing.T) {
	assert.True(t, PlanStatusActive.IsValid())
	assert.True(t, PlanStatusCompleted.IsValid())
	assert.True(t, PlanStatusCancelled.IsValid())
	assert.False(t, PlanStatus("paused").IsValid())
}

func TestInstallmentFrequency_IsValid(t *testing.T) {
	assert.True(t, FrequencyWeekly.IsValid())
	assert.True(t, FrequencyBiweekly.IsValid())
	assert.True(t, FrequencyMonthly.IsValid())
	assert.False(t, InstallmentFrequency("daily").IsValid())
}

func TestPaymentInstallment_Outstanding(t *testing.T) {
	inst := PaymentInstallment{
		Amount:     decimal.RequireFromString("33.34"),
		PaidAmount: decimal.RequireFromString("10.00"),
		DueDate:    time.Now(),
	}
	assert.True(t, inst.Outstanding().Equal(decimal.RequireFromString("23.34")))
}
