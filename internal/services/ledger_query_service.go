package services

import (
	"context"

	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

// LedgerQueryService exposes the read and delete operations the reporting
// and UI collaborators consume. All business mutation goes through the
// payment and installment services, never through here.
type LedgerQueryService struct {
	store store.Store
}

// NewLedgerQueryService creates a new LedgerQueryService
func NewLedgerQueryService(s store.Store) *LedgerQueryService {
	return &LedgerQueryService{store: s}
}

// GetReceivable returns one receivable by id
func (s *LedgerQueryService) GetReceivable(ctx context.Context, id uint) (*models.AccountReceivable, error) {
	return s.store.Receivables().GetByID(ctx, id)
}

// ListReceivables returns receivables matching the filter
func (s *LedgerQueryService) ListReceivables(ctx context.Context, f store.ReceivableFilter) ([]models.AccountReceivable, error) {
	return s.store.Receivables().List(ctx, f)
}

// DeleteReceivable soft deletes a receivable
func (s *LedgerQueryService) DeleteReceivable(ctx context.Context, id uint) error {
	return s.store.Receivables().Delete(ctx, id)
}

// GetPayable returns one payable by id
func (s *LedgerQueryService) GetPayable(ctx context.Context, id uint) (*models.AccountPayable, error) {
	return s.store.Payables().GetByID(ctx, id)
}

// ListPayables returns payables matching the filter
func (s *LedgerQueryService) ListPayables(ctx context.Context, f store.PayableFilter) ([]models.AccountPayable, error) {
	return s.store.Payables().List(ctx, f)
}

// DeletePayable soft deletes a payable
func (s *LedgerQueryService) DeletePayable(ctx context.Context, id uint) error {
	return s.store.Payables().Delete(ctx, id)
}

// ListOverdueReceivables returns receivables already flagged overdue
func (s *LedgerQueryService) ListOverdueReceivables(ctx context.Context) ([]models.AccountReceivable, error) {
	status := models.AccountStatusOverdue
	return s.store.Receivables().List(ctx, store.ReceivableFilter{Status: &status})
}

// ListOverduePayables returns payables already flagged overdue
func (s *LedgerQueryService) ListOverduePayables(ctx context.Context) ([]models.AccountPayable, error) {
	status := models.AccountStatusOverdue
	return s.store.Payables().List(ctx, store.PayableFilter{Status: &status})
}
