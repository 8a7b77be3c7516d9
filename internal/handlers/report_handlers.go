package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"flowi_ledger/internal/models"
	"flowi_ledger/internal/services"
)

// ReportHandler serves the aging report, summary, overdue lists and the
// manual sweep trigger
type ReportHandler struct {
	aging   *services.AgingService
	summary *services.SummaryService
	sweeper *services.SweeperService
	ledger  *services.LedgerQueryService
	plans   *services.InstallmentService
	cache   *services.RedisCache
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(aging *services.AgingService, summary *services.SummaryService, sweeper *services.SweeperService, ledger *services.LedgerQueryService, plans *services.InstallmentService, cache *services.RedisCache) *ReportHandler {
	return &ReportHandler{aging: aging, summary: summary, sweeper: sweeper, ledger: ledger, plans: plans, cache: cache}
}

// GetAgingReport handles GET /api/reports/aging?as_of=
func (h *ReportHandler) GetAgingReport(c echo.Context) error {
	asOf := time.Now()
	if v := c.QueryParam("as_of"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return err
		}
		asOf = t
	}
	// The report has daily granularity and the cache key carries only the
	// date, so the timestamp must collapse to its date before computing.
	asOf = services.ReportDay(asOf)

	ctx := c.Request().Context()
	key := "aging_report:" + asOf.Format("2006-01-02")
	report, err := services.GetOrSet(h.cache, ctx, key, 15*time.Minute, func() ([]models.AgingReportItem, error) {
		return h.aging.ComputeAgingReport(ctx, asOf)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// GetSummary handles GET /api/reports/summary
func (h *ReportHandler) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()
	summary, err := services.GetOrSet(h.cache, ctx, "ledger_summary", 5*time.Minute, func() (services.LedgerSummary, error) {
		return h.summary.OutstandingSummary(ctx)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// ListOverdueReceivables handles GET /api/overdue/receivables
func (h *ReportHandler) ListOverdueReceivables(c echo.Context) error {
	recs, err := h.ledger.ListOverdueReceivables(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

// ListOverduePayables handles GET /api/overdue/payables
func (h *ReportHandler) ListOverduePayables(c echo.Context) error {
	ps, err := h.ledger.ListOverduePayables(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ps)
}

// ListOverdueInstallments handles GET /api/overdue/installments
func (h *ReportHandler) ListOverdueInstallments(c echo.Context) error {
	insts, err := h.plans.ListOverdueInstallments(c.Request().Context(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, insts)
}

// RunSweeps handles POST /api/sweeps/run. Each sweep is independent; the
// response carries the counts changed even when one fails.
func (h *ReportHandler) RunSweeps(c echo.Context) error {
	result, err := h.sweeper.RunAll(c.Request().Context(), time.Now())
	if err != nil {
		return c.JSON(http.StatusMultiStatus, map[string]interface{}{
			"result": result,
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, result)
}
