package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Currency is the set of currencies the ledger tracks
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyVES Currency = "VES"
)

// IsValid reports whether the currency is one of the supported values
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyVES:
		return true
	}
	return false
}

// AccountStatus represents the lifecycle status of a receivable, payable or installment
type AccountStatus string

const (
	AccountStatusPending AccountStatus = "pending"
	AccountStatusPartial AccountStatus = "partial"
	AccountStatusPaid    AccountStatus = "paid"
	AccountStatusOverdue AccountStatus = "overdue"
)

// IsValid reports whether the status is one of the defined values
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusPending, AccountStatusPartial, AccountStatusPaid, AccountStatusOverdue:
		return true
	}
	return false
}

// IsTerminal reports whether the status accepts no further payments
func (s AccountStatus) IsTerminal() bool {
	return s == AccountStatusPaid
}

// IsOutstanding reports whether the account still carries an unpaid balance
func (s AccountStatus) IsOutstanding() bool {
	return s == AccountStatusPending || s == AccountStatusPartial || s == AccountStatusOverdue
}

// AccountReceivable represents money owed to the business by a customer.
// Amount is fixed at creation; only Status evolves afterwards.
type AccountReceivable struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID          string          `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	CustomerID    uint            `gorm:"index" json:"customer_id"`
	InvoiceNumber string          `gorm:"type:varchar(100);uniqueIndex" json:"invoice_number"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Currency      Currency        `gorm:"type:varchar(10)" json:"currency"`
	DueDate       time.Time       `gorm:"index" json:"due_date"`
	Status        AccountStatus   `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	Description   string          `gorm:"type:text" json:"description"`
	SaleID        *uint           `gorm:"index" json:"sale_id,omitempty"`
}
