package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flowi_ledger/internal/models"
	"flowi_ledger/internal/services"
)

// PayableHandler serves the payable endpoints
type PayableHandler struct {
	invoices *services.InvoiceService
	payments *services.PaymentService
	ledger   *services.LedgerQueryService
}

// NewPayableHandler creates a new PayableHandler
func NewPayableHandler(invoices *services.InvoiceService, payments *services.PaymentService, ledger *services.LedgerQueryService) *PayableHandler {
	return &PayableHandler{invoices: invoices, payments: payments, ledger: ledger}
}

// CreatePayable handles POST /api/payables
func (h *PayableHandler) CreatePayable(c echo.Context) error {
	var req CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return err
	}

	p, err := h.invoices.CreateBill(c.Request().Context(), services.CreateBillInput{
		EntityType: models.PayableEntityType(req.EntityType),
		SupplierID: req.SupplierID,
		EntityName: req.EntityName,
		BillNumber: req.BillNumber,
		Amount:     req.Amount,
		Currency:   models.Currency(req.Currency),
		DueDate:    dueDate,
		Category:   req.Category,
		ExpenseID:  req.ExpenseID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPayables handles GET /api/payables
func (h *PayableHandler) ListPayables(c echo.Context) error {
	filter, err := payableFilterFromQuery(c)
	if err != nil {
		return err
	}
	ps, err := h.ledger.ListPayables(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ps)
}

// GetPayable handles GET /api/payables/:id
func (h *PayableHandler) GetPayable(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.ledger.GetPayable(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// DeletePayable handles DELETE /api/payables/:id
func (h *PayableHandler) DeletePayable(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeletePayable(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPayablePayments handles GET /api/payables/:id/payments
func (h *PayableHandler) GetPayablePayments(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	history, err := h.payments.GetPaymentHistory(c.Request().Context(), id, models.AccountTypePayable)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}
