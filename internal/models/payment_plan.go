package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlanStatus represents the lifecycle status of a payment plan
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// IsValid reports whether the plan status is one of the defined values
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusActive, PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// InstallmentFrequency is the cadence of a payment plan's installments
type InstallmentFrequency string

const (
	FrequencyWeekly   InstallmentFrequency = "weekly"
	FrequencyBiweekly InstallmentFrequency = "biweekly"
	FrequencyMonthly  InstallmentFrequency = "monthly"
)

// IsValid reports whether the frequency is one of the defined values
func (f InstallmentFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// PaymentPlan represents a sale paid off across scheduled installments.
// The installment amounts always sum exactly to TotalAmount.
type PaymentPlan struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID        string          `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	SaleID      uint            `gorm:"index" json:"sale_id"`
	CustomerID  uint            `gorm:"index" json:"customer_id"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_amount"`
	Currency    Currency        `gorm:"type:varchar(10)" json:"currency"`
	Status      PlanStatus      `gorm:"type:varchar(20);index;default:'active'" json:"status"`

	// Relationships
	Installments []PaymentInstallment `gorm:"foreignKey:PaymentPlanID" json:"installments,omitempty"`
}

// PaymentInstallment is one scheduled slice of a payment plan
type PaymentInstallment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PaymentPlanID        uint            `gorm:"index" json:"payment_plan_id"`
	InstallmentNumber    int             `json:"installment_number"`
	DueDate              time.Time       `gorm:"index" json:"due_date"`
	Amount               decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	PaidAmount           decimal.Decimal `gorm:"type:decimal(15,2)" json:"paid_amount"`
	Status               AccountStatus   `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod        PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	TransactionReference string          `gorm:"type:varchar(100)" json:"transaction_reference,omitempty"`

	// Relationships
	PaymentPlan PaymentPlan `gorm:"foreignKey:PaymentPlanID" json:"payment_plan,omitempty"`
}

// Outstanding returns the unpaid remainder of the installment
func (i PaymentInstallment) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}
