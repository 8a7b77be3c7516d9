package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

// invoiceSeq is a process-local sequence appended to generated document
// numbers. The unique index on the number column is the real guard; the
// sequence just keeps collisions rare under concurrent creation.
var invoiceSeq uint64

const numberCreateAttempts = 3

// InvoiceService creates receivables and payables
type InvoiceService struct {
	store store.Store
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(s store.Store) *InvoiceService {
	return &InvoiceService{store: s}
}

// CreateInvoiceInput carries the fields for a new receivable
type CreateInvoiceInput struct {
	CustomerID    uint
	InvoiceNumber string // generated when empty
	Amount        decimal.Decimal
	Currency      models.Currency
	DueDate       time.Time
	Description   string
	SaleID        *uint
}

// CreateBillInput carries the fields for a new payable
type CreateBillInput struct {
	EntityType models.PayableEntityType
	SupplierID *uint
	EntityName string
	BillNumber string // generated when empty
	Amount     decimal.Decimal
	Currency   models.Currency
	DueDate    time.Time
	Category   string
	ExpenseID  *uint
}

func generateNumber(prefix string) string {
	seq := atomic.AddUint64(&invoiceSeq, 1)
	return fmt.Sprintf("%s-%s-%04d", prefix, time.Now().UTC().Format("20060102150405"), seq%10000)
}

func validateAmountAndDue(amount decimal.Decimal, currency models.Currency, dueDate time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperr.Validation("amount must be greater than zero")
	}
	if !currency.IsValid() {
		return apperr.Validation("unsupported currency %q", currency)
	}
	if dueDate.IsZero() {
		return apperr.Validation("due date is required")
	}
	return nil
}

// CreateInvoice creates a receivable with status pending. When no invoice
// number is supplied one is generated and retried on a uniqueness conflict.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*models.AccountReceivable, error) {
	if err := validateAmountAndDue(in.Amount, in.Currency, in.DueDate); err != nil {
		return nil, err
	}
	if in.CustomerID == 0 {
		return nil, apperr.Validation("customer id is required")
	}

	generated := in.InvoiceNumber == ""
	number := in.InvoiceNumber

	for attempt := 0; attempt < numberCreateAttempts; attempt++ {
		if generated {
			number = generateNumber("INV")
		}
		rec := &models.AccountReceivable{
			UUID:          uuid.New().String(),
			CustomerID:    in.CustomerID,
			InvoiceNumber: number,
			Amount:        in.Amount,
			Currency:      in.Currency,
			DueDate:       in.DueDate,
			Status:        models.AccountStatusPending,
			Description:   in.Description,
			SaleID:        in.SaleID,
		}
		err := s.store.Receivables().Create(ctx, rec)
		if err == nil {
			return rec, nil
		}
		// only generated numbers are worth retrying on collision
		if !generated || !apperr.IsConflict(err) {
			return nil, err
		}
	}
	return nil, apperr.Conflict("could not allocate a unique invoice number")
}

// CreateBill creates a payable. The entity type decides the identity field:
// supplier bills carry a supplier id, every other type a free-form entity
// name. Exactly one must be set.
func (s *InvoiceService) CreateBill(ctx context.Context, in CreateBillInput) (*models.AccountPayable, error) {
	if err := validateAmountAndDue(in.Amount, in.Currency, in.DueDate); err != nil {
		return nil, err
	}
	if !in.EntityType.IsValid() {
		return nil, apperr.Validation("unknown entity type %q", in.EntityType)
	}

	if in.EntityType == models.PayableEntitySupplier {
		if in.SupplierID == nil || *in.SupplierID == 0 {
			return nil, apperr.Validation("supplier bills require a supplier id")
		}
		if in.EntityName != "" {
			return nil, apperr.Validation("supplier bills must not carry an entity name")
		}
	} else {
		if in.EntityName == "" {
			return nil, apperr.Validation("%s bills require an entity name", in.EntityType)
		}
		if in.SupplierID != nil {
			return nil, apperr.Validation("%s bills must not carry a supplier id", in.EntityType)
		}
	}

	generated := in.BillNumber == ""
	number := in.BillNumber

	for attempt := 0; attempt < numberCreateAttempts; attempt++ {
		if generated {
			number = generateNumber("BILL")
		}
		p := &models.AccountPayable{
			UUID:       uuid.New().String(),
			EntityType: in.EntityType,
			SupplierID: in.SupplierID,
			EntityName: in.EntityName,
			BillNumber: number,
			Amount:     in.Amount,
			Currency:   in.Currency,
			DueDate:    in.DueDate,
			Status:     models.AccountStatusPending,
			Category:   in.Category,
			ExpenseID:  in.ExpenseID,
		}
		err := s.store.Payables().Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !generated || !apperr.IsConflict(err) {
			return nil, err
		}
	}
	return nil, apperr.Conflict("could not allocate a unique bill number")
}
