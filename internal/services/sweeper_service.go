package services

import (
	"context"
	"time"

	"flowi_ledger/internal/logger"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

// SweeperService reclassifies past-due records as overdue. Every sweep is a
// single conditional update (status and due-date checked in the write), so
// concurrent sweeps commute and a repeat run changes nothing.
type SweeperService struct {
	store store.Store
}

// NewSweeperService creates a new SweeperService
func NewSweeperService(s store.Store) *SweeperService {
	return &SweeperService{store: s}
}

var sweepableAccountStatuses = []models.AccountStatus{
	models.AccountStatusPending,
	models.AccountStatusPartial,
}

// MarkOverdueReceivables flags pending and partial receivables past their
// due date, returning the number of records changed
func (s *SweeperService) MarkOverdueReceivables(ctx context.Context, asOf time.Time) (int64, error) {
	return s.store.Receivables().UpdateStatusWhereDue(ctx, sweepableAccountStatuses, asOf, models.AccountStatusOverdue)
}

// MarkOverduePayables flags pending and partial payables past their due
// date, returning the number of records changed
func (s *SweeperService) MarkOverduePayables(ctx context.Context, asOf time.Time) (int64, error) {
	return s.store.Payables().UpdateStatusWhereDue(ctx, sweepableAccountStatuses, asOf, models.AccountStatusOverdue)
}

// MarkOverdueInstallments flags pending installments past their due date.
// Partially paid installments keep their partial status.
func (s *SweeperService) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	return s.store.Installments().UpdateStatusWhereDue(ctx, []models.AccountStatus{models.AccountStatusPending}, asOf, models.AccountStatusOverdue)
}

// SweepResult reports how many records each sweep changed
type SweepResult struct {
	Receivables  int64 `json:"receivables"`
	Payables     int64 `json:"payables"`
	Installments int64 `json:"installments"`
}

// RunAll runs the three sweeps with partial-failure semantics: a failing
// sweep is logged and the remainder still runs. The first error is returned
// alongside the counts actually changed.
func (s *SweeperService) RunAll(ctx context.Context, asOf time.Time) (SweepResult, error) {
	log := logger.WithComponent("sweeper")
	var result SweepResult
	var firstErr error

	n, err := s.MarkOverdueReceivables(ctx, asOf)
	if err != nil {
		log.Error().Err(err).Msg("receivable sweep failed")
		firstErr = err
	}
	result.Receivables = n

	n, err = s.MarkOverduePayables(ctx, asOf)
	if err != nil {
		log.Error().Err(err).Msg("payable sweep failed")
		if firstErr == nil {
			firstErr = err
		}
	}
	result.Payables = n

	n, err = s.MarkOverdueInstallments(ctx, asOf)
	if err != nil {
		log.Error().Err(err).Msg("installment sweep failed")
		if firstErr == nil {
			firstErr = err
		}
	}
	result.Installments = n

	log.Info().
		Int64("receivables", result.Receivables).
		Int64("payables", result.Payables).
		Int64("installments", result.Installments).
		Msg("overdue sweep finished")
	return result, firstErr
}
