package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/services"
	"flowi_ledger/internal/store"
)

// PlanHandler serves the payment plan endpoints
type PlanHandler struct {
	installments *services.InstallmentService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(installments *services.InstallmentService) *PlanHandler {
	return &PlanHandler{installments: installments}
}

// CreatePlan handles POST /api/payment-plans
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	var req CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	firstDate, err := parseDate(req.FirstPaymentDate)
	if err != nil {
		return err
	}

	plan, err := h.installments.CreatePaymentPlan(c.Request().Context(), services.CreatePlanInput{
		SaleID:               req.SaleID,
		CustomerID:           req.CustomerID,
		TotalAmount:          req.TotalAmount,
		Currency:             models.Currency(req.Currency),
		NumberOfInstallments: req.NumberOfInstallments,
		Frequency:            models.InstallmentFrequency(req.Frequency),
		FirstPaymentDate:     firstDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

// ListPlans handles GET /api/payment-plans
func (h *PlanHandler) ListPlans(c echo.Context) error {
	var filter store.PlanFilter
	if v := c.QueryParam("sale_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return apperr.Validation("invalid sale_id %q", v)
		}
		sid := uint(id)
		filter.SaleID = &sid
	}
	if v := c.QueryParam("customer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return apperr.Validation("invalid customer_id %q", v)
		}
		cid := uint(id)
		filter.CustomerID = &cid
	}
	if v := c.QueryParam("status"); v != "" {
		status := models.PlanStatus(v)
		if !status.IsValid() {
			return apperr.Validation("invalid status %q", v)
		}
		filter.Status = &status
	}

	plans, err := h.installments.ListPlans(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

// GetPlan handles GET /api/payment-plans/:id
func (h *PlanHandler) GetPlan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	plan, err := h.installments.GetPlan(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// CancelPlan handles POST /api/payment-plans/:id/cancel
func (h *PlanHandler) CancelPlan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.installments.CancelPlan(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PayInstallment handles POST /api/installments/:id/payments
func (h *PlanHandler) PayInstallment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req InstallmentPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	inst, err := h.installments.ProcessInstallmentPayment(
		c.Request().Context(),
		id,
		req.Amount,
		models.PaymentMethod(req.PaymentMethod),
		req.Reference,
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inst)
}
