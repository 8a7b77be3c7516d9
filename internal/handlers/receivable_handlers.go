package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flowi_ledger/internal/models"
	"flowi_ledger/internal/services"
)

// ReceivableHandler serves the receivable endpoints
type ReceivableHandler struct {
	invoices *services.InvoiceService
	payments *services.PaymentService
	ledger   *services.LedgerQueryService
}

// NewReceivableHandler creates a new ReceivableHandler
func NewReceivableHandler(invoices *services.InvoiceService, payments *services.PaymentService, ledger *services.LedgerQueryService) *ReceivableHandler {
	return &ReceivableHandler{invoices: invoices, payments: payments, ledger: ledger}
}

// CreateReceivable handles POST /api/receivables
func (h *ReceivableHandler) CreateReceivable(c echo.Context) error {
	var req CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return err
	}

	rec, err := h.invoices.CreateInvoice(c.Request().Context(), services.CreateInvoiceInput{
		CustomerID:    req.CustomerID,
		InvoiceNumber: req.InvoiceNumber,
		Amount:        req.Amount,
		Currency:      models.Currency(req.Currency),
		DueDate:       dueDate,
		Description:   req.Description,
		SaleID:        req.SaleID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

// ListReceivables handles GET /api/receivables
func (h *ReceivableHandler) ListReceivables(c echo.Context) error {
	filter, err := receivableFilterFromQuery(c)
	if err != nil {
		return err
	}
	recs, err := h.ledger.ListReceivables(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

// GetReceivable handles GET /api/receivables/:id
func (h *ReceivableHandler) GetReceivable(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rec, err := h.ledger.GetReceivable(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// DeleteReceivable handles DELETE /api/receivables/:id
func (h *ReceivableHandler) DeleteReceivable(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteReceivable(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetReceivablePayments handles GET /api/receivables/:id/payments
func (h *ReceivableHandler) GetReceivablePayments(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	history, err := h.payments.GetPaymentHistory(c.Request().Context(), id, models.AccountTypeReceivable)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}
