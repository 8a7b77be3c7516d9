package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"flowi_ledger/internal/models"
)

// ReceivableFilter defines filtering options for receivable queries
type ReceivableFilter struct {
	CustomerID *uint
	Status     *models.AccountStatus
	Currency   *models.Currency
	SaleID     *uint
	DueFrom    *time.Time
	DueTo      *time.Time
}

// PayableFilter defines filtering options for payable queries
type PayableFilter struct {
	EntityType *models.PayableEntityType
	SupplierID *uint
	Status     *models.AccountStatus
	Currency   *models.Currency
	Category   *string
	DueFrom    *time.Time
	DueTo      *time.Time
}

// PlanFilter defines filtering options for payment plan queries
type PlanFilter struct {
	SaleID     *uint
	CustomerID *uint
	Status     *models.PlanStatus
}

// Receivables is the persistence boundary for account receivables
type Receivables interface {
	Create(ctx context.Context, r *models.AccountReceivable) error
	GetByID(ctx context.Context, id uint) (*models.AccountReceivable, error)
	// GetForUpdate reads the row under a write lock; only meaningful inside Atomic.
	GetForUpdate(ctx context.Context, id uint) (*models.AccountReceivable, error)
	List(ctx context.Context, f ReceivableFilter) ([]models.AccountReceivable, error)
	UpdateStatus(ctx context.Context, id uint, status models.AccountStatus) error
	Delete(ctx context.Context, id uint) error
	// UpdateStatusWhereDue conditionally transitions every row whose due date is
	// before cutoff and whose status is in from. Returns the number of rows changed.
	UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error)
}

// Payables is the persistence boundary for account payables
type Payables interface {
	Create(ctx context.Context, p *models.AccountPayable) error
	GetByID(ctx context.Context, id uint) (*models.AccountPayable, error)
	GetForUpdate(ctx context.Context, id uint) (*models.AccountPayable, error)
	List(ctx context.Context, f PayableFilter) ([]models.AccountPayable, error)
	UpdateStatus(ctx context.Context, id uint, status models.AccountStatus) error
	Delete(ctx context.Context, id uint) error
	UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error)
}

// Payments is the persistence boundary for the append-only payment log
type Payments interface {
	Create(ctx context.Context, p *models.Payment) error
	// ListByAccount returns payments for the account ordered by processed_at descending.
	ListByAccount(ctx context.Context, accountID uint, accountType models.AccountType) ([]models.Payment, error)
	// Sum totals payments against an account, optionally restricted to one currency.
	Sum(ctx context.Context, accountID uint, accountType models.AccountType, currency *models.Currency) (decimal.Decimal, error)
	// SumByAccountIDs totals payments per account for a batch of accounts.
	SumByAccountIDs(ctx context.Context, accountType models.AccountType, ids []uint) (map[uint]decimal.Decimal, error)
}

// Plans is the persistence boundary for payment plans
type Plans interface {
	// Create persists the plan together with its installments.
	Create(ctx context.Context, p *models.PaymentPlan) error
	GetByID(ctx context.Context, id uint) (*models.PaymentPlan, error)
	GetForUpdate(ctx context.Context, id uint) (*models.PaymentPlan, error)
	List(ctx context.Context, f PlanFilter) ([]models.PaymentPlan, error)
	UpdateStatus(ctx context.Context, id uint, status models.PlanStatus) error
}

// Installments is the persistence boundary for plan installments
type Installments interface {
	GetByID(ctx context.Context, id uint) (*models.PaymentInstallment, error)
	GetForUpdate(ctx context.Context, id uint) (*models.PaymentInstallment, error)
	ListByPlan(ctx context.Context, planID uint) ([]models.PaymentInstallment, error)
	ListDueBefore(ctx context.Context, cutoff time.Time, statuses []models.AccountStatus) ([]models.PaymentInstallment, error)
	Update(ctx context.Context, i *models.PaymentInstallment) error
	UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error)
}

// PartialPayments is the persistence boundary for non-installment sale payments
type PartialPayments interface {
	Create(ctx context.Context, p *models.PartialPayment) error
	ListBySale(ctx context.Context, saleID uint) ([]models.PartialPayment, error)
}

// Store bundles the per-entity repositories behind one injectable boundary.
// Business rules live in the services composing it, never here.
type Store interface {
	Receivables() Receivables
	Payables() Payables
	Payments() Payments
	Plans() Plans
	Installments() Installments
	PartialPayments() PartialPayments

	// Atomic runs fn against a store whose writes commit or roll back as one
	// unit. Mutations to a single account's status must happen inside Atomic
	// with a ForUpdate read so concurrent writers serialize per account.
	Atomic(ctx context.Context, fn func(Store) error) error
}
