package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

// DirectoryFunc resolves a customer id to a display name. The customer
// directory is an external collaborator; the ledger stores only the id.
type DirectoryFunc func(ctx context.Context, customerID uint) string

// AgingService computes time-bucketed outstanding-balance reports
type AgingService struct {
	store     store.Store
	directory DirectoryFunc
}

// NewAgingService creates a new AgingService. directory may be nil, in which
// case customer names are left empty.
func NewAgingService(s store.Store, directory DirectoryFunc) *AgingService {
	return &AgingService{store: s, directory: directory}
}

// ReportDay collapses a report timestamp to its UTC date. The aging report
// has daily granularity; two timestamps on the same day must produce the
// same report and share one cache entry.
func ReportDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// ComputeAgingReport buckets every outstanding receivable's unpaid balance
// by how many days overdue it is as of asOf, aggregated per customer and
// sorted by grand total descending. Fully collected or negative balances
// drop out of the report.
//
// The bucketed figure is the outstanding balance, not the original invoice
// amount; bucketing the original amount would double-count money already in
// hand.
func (s *AgingService) ComputeAgingReport(ctx context.Context, asOf time.Time) ([]models.AgingReportItem, error) {
	receivables, err := s.outstandingReceivables(ctx)
	if err != nil {
		return nil, err
	}
	if len(receivables) == 0 {
		return []models.AgingReportItem{}, nil
	}

	ids := make([]uint, len(receivables))
	for i, r := range receivables {
		ids[i] = r.ID
	}
	paid, err := s.store.Payments().SumByAccountIDs(ctx, models.AccountTypeReceivable, ids)
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[uint]*models.AgingReportItem)
	for _, r := range receivables {
		outstanding := r.Amount.Sub(paid[r.ID])
		if outstanding.LessThanOrEqual(decimal.Zero) {
			continue
		}

		item, ok := byCustomer[r.CustomerID]
		if !ok {
			item = &models.AgingReportItem{CustomerID: r.CustomerID}
			byCustomer[r.CustomerID] = item
		}

		daysOverdue := int(asOf.Sub(r.DueDate).Hours() / 24)
		switch {
		case daysOverdue <= 0:
			item.Current = item.Current.Add(outstanding)
		case daysOverdue <= 30:
			item.Days30 = item.Days30.Add(outstanding)
		case daysOverdue <= 60:
			item.Days60 = item.Days60.Add(outstanding)
		case daysOverdue <= 90:
			item.Days90 = item.Days90.Add(outstanding)
		default:
			item.Over90 = item.Over90.Add(outstanding)
		}
		item.Total = item.Total.Add(outstanding)
	}

	report := make([]models.AgingReportItem, 0, len(byCustomer))
	for _, item := range byCustomer {
		if item.Total.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if s.directory != nil {
			item.CustomerName = s.directory(ctx, item.CustomerID)
		}
		report = append(report, *item)
	}
	sort.Slice(report, func(i, j int) bool {
		return report[i].Total.GreaterThan(report[j].Total)
	})
	return report, nil
}

func (s *AgingService) outstandingReceivables(ctx context.Context) ([]models.AccountReceivable, error) {
	var all []models.AccountReceivable
	for _, status := range []models.AccountStatus{
		models.AccountStatusPending,
		models.AccountStatusPartial,
		models.AccountStatusOverdue,
	} {
		st := status
		recs, err := s.store.Receivables().List(ctx, store.ReceivableFilter{Status: &st})
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}
