package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayableEntityType identifies the kind of counterparty a payable is owed to
type PayableEntityType string

const (
	PayableEntitySupplier    PayableEntityType = "supplier"
	PayableEntityCompany     PayableEntityType = "company"
	PayableEntityUtility     PayableEntityType = "utility"
	PayableEntityInstitution PayableEntityType = "institution"
	PayableEntityGeneral     PayableEntityType = "general"
)

// IsValid reports whether the entity type is one of the defined values
func (t PayableEntityType) IsValid() bool {
	switch t {
	case PayableEntitySupplier, PayableEntityCompany, PayableEntityUtility,
		PayableEntityInstitution, PayableEntityGeneral:
		return true
	}
	return false
}

// AccountPayable represents money the business owes to a supplier or other entity.
// When EntityType is "supplier" the counterparty is SupplierID; for every other
// entity type it is the free-form EntityName. Exactly one of the two is set.
type AccountPayable struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID       string            `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	EntityType PayableEntityType `gorm:"type:varchar(20)" json:"entity_type"`
	SupplierID *uint             `gorm:"index" json:"supplier_id,omitempty"`
	EntityName string            `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	BillNumber string            `gorm:"type:varchar(100);uniqueIndex" json:"bill_number"`
	Amount     decimal.Decimal   `gorm:"type:decimal(15,2)" json:"amount"`
	Currency   Currency          `gorm:"type:varchar(10)" json:"currency"`
	DueDate    time.Time         `gorm:"index" json:"due_date"`
	Status     AccountStatus     `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	Category   string            `gorm:"type:varchar(100)" json:"category"`
	ExpenseID  *uint             `gorm:"index" json:"expense_id,omitempty"`
}
