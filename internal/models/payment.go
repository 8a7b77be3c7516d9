package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountType distinguishes which ledger side a payment applies to
type AccountType string

const (
	AccountTypeReceivable AccountType = "receivable"
	AccountTypePayable    AccountType = "payable"
)

// IsValid reports whether the account type is one of the defined values
func (t AccountType) IsValid() bool {
	return t == AccountTypeReceivable || t == AccountTypePayable
}

// PaymentMethod is the tender used for a payment
type PaymentMethod string

const (
	PaymentMethodUSD   PaymentMethod = "usd"
	PaymentMethodVES   PaymentMethod = "ves"
	PaymentMethodMixed PaymentMethod = "mixed"
	PaymentMethodZelle PaymentMethod = "zelle"
)

// IsValid reports whether the payment method is one of the defined values
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodUSD, PaymentMethodVES, PaymentMethodMixed, PaymentMethodZelle:
		return true
	}
	return false
}

// Payment records money applied against a receivable or payable.
// Rows are append-only; they are never mutated or deleted once written.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	AccountID      uint            `gorm:"index:idx_payments_account,priority:1" json:"account_id"`
	AccountType    AccountType     `gorm:"type:varchar(20);index:idx_payments_account,priority:2" json:"account_type"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Currency       Currency        `gorm:"type:varchar(10)" json:"currency"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method"`
	Reference      string          `gorm:"type:varchar(100)" json:"reference,omitempty"`
	LastFourDigits string          `gorm:"type:varchar(4)" json:"last_four_digits,omitempty"`
	ZelleEmail     string          `gorm:"type:varchar(255)" json:"zelle_email,omitempty"`
	ZellePhone     string          `gorm:"type:varchar(50)" json:"zelle_phone,omitempty"`
	ProcessedAt    time.Time       `gorm:"index" json:"processed_at"`
}

// PartialPayment is an unstructured payment against a sale, outside the
// installment ledger.
type PartialPayment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	SaleID        uint            `gorm:"index" json:"sale_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Currency      Currency        `gorm:"type:varchar(10)" json:"currency"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method"`
	Reference     string          `gorm:"type:varchar(100)" json:"reference,omitempty"`
	ProcessedBy   string          `gorm:"type:varchar(255)" json:"processed_by"`
	ProcessedAt   time.Time       `json:"processed_at"`
}
