package services

import (
	"context"

	"github.com/shopspring/decimal"

	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

// ExchangeFunc supplies the VES-per-USD rate. Exchange rates come from an
// external collaborator; the ledger never computes or stores them.
type ExchangeFunc func() decimal.Decimal

// LedgerSummary totals outstanding balances per currency. The USD-equivalent
// figures are display-only conversions of the VES totals.
type LedgerSummary struct {
	ReceivablesUSD decimal.Decimal `json:"receivables_usd"`
	ReceivablesVES decimal.Decimal `json:"receivables_ves"`
	PayablesUSD    decimal.Decimal `json:"payables_usd"`
	PayablesVES    decimal.Decimal `json:"payables_ves"`

	ReceivablesUSDEquivalent decimal.Decimal `json:"receivables_usd_equivalent"`
	PayablesUSDEquivalent    decimal.Decimal `json:"payables_usd_equivalent"`
}

// SummaryService aggregates outstanding balances for reporting consumers
type SummaryService struct {
	store    store.Store
	exchange ExchangeFunc
}

// NewSummaryService creates a new SummaryService. exchange may be nil, in
// which case the USD-equivalent figures cover only the USD totals.
func NewSummaryService(s store.Store, exchange ExchangeFunc) *SummaryService {
	return &SummaryService{store: s, exchange: exchange}
}

// OutstandingSummary totals the unpaid balance of every open receivable and
// payable, kept separate per currency
func (s *SummaryService) OutstandingSummary(ctx context.Context) (LedgerSummary, error) {
	var summary LedgerSummary

	recUSD, recVES, err := s.receivableTotals(ctx)
	if err != nil {
		return summary, err
	}
	payUSD, payVES, err := s.payableTotals(ctx)
	if err != nil {
		return summary, err
	}

	summary.ReceivablesUSD = recUSD
	summary.ReceivablesVES = recVES
	summary.PayablesUSD = payUSD
	summary.PayablesVES = payVES

	summary.ReceivablesUSDEquivalent = recUSD
	summary.PayablesUSDEquivalent = payUSD
	if s.exchange != nil {
		rate := s.exchange()
		if rate.GreaterThan(decimal.Zero) {
			summary.ReceivablesUSDEquivalent = recUSD.Add(recVES.Div(rate).Round(2))
			summary.PayablesUSDEquivalent = payUSD.Add(payVES.Div(rate).Round(2))
		}
	}
	return summary, nil
}

func (s *SummaryService) receivableTotals(ctx context.Context) (usd, ves decimal.Decimal, err error) {
	for _, status := range []models.AccountStatus{
		models.AccountStatusPending,
		models.AccountStatusPartial,
		models.AccountStatusOverdue,
	} {
		st := status
		recs, listErr := s.store.Receivables().List(ctx, store.ReceivableFilter{Status: &st})
		if listErr != nil {
			return usd, ves, listErr
		}
		ids := make([]uint, len(recs))
		for i, r := range recs {
			ids[i] = r.ID
		}
		paid, sumErr := s.store.Payments().SumByAccountIDs(ctx, models.AccountTypeReceivable, ids)
		if sumErr != nil {
			return usd, ves, sumErr
		}
		for _, r := range recs {
			outstanding := r.Amount.Sub(paid[r.ID])
			if outstanding.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if r.Currency == models.CurrencyVES {
				ves = ves.Add(outstanding)
			} else {
				usd = usd.Add(outstanding)
			}
		}
	}
	return usd, ves, nil
}

func (s *SummaryService) payableTotals(ctx context.Context) (usd, ves decimal.Decimal, err error) {
	for _, status := range []models.AccountStatus{
		models.AccountStatusPending,
		models.AccountStatusPartial,
		models.AccountStatusOverdue,
	} {
		st := status
		pays, listErr := s.store.Payables().List(ctx, store.PayableFilter{Status: &st})
		if listErr != nil {
			return usd, ves, listErr
		}
		ids := make([]uint, len(pays))
		for i, p := range pays {
			ids[i] = p.ID
		}
		paid, sumErr := s.store.Payments().SumByAccountIDs(ctx, models.AccountTypePayable, ids)
		if sumErr != nil {
			return usd, ves, sumErr
		}
		for _, p := range pays {
			outstanding := p.Amount.Sub(paid[p.ID])
			if outstanding.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if p.Currency == models.CurrencyVES {
				ves = ves.Add(outstanding)
			} else {
				usd = usd.Add(outstanding)
			}
		}
	}
	return usd, ves, nil
}
