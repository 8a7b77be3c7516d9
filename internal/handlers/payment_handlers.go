package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/services"
)

// PaymentHandler serves the payment endpoints
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RecordPayment handles POST /api/payments
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	payment, err := h.payments.RecordPayment(c.Request().Context(), services.RecordPaymentInput{
		AccountID:      req.AccountID,
		AccountType:    models.AccountType(req.AccountType),
		Amount:         req.Amount,
		Currency:       models.Currency(req.Currency),
		Method:         models.PaymentMethod(req.PaymentMethod),
		Reference:      req.Reference,
		LastFourDigits: req.LastFourDigits,
		ZelleEmail:     req.ZelleEmail,
		ZellePhone:     req.ZellePhone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

// GetTotalPayments handles GET /api/payments/total?account_id=&account_type=&currency=
func (h *PaymentHandler) GetTotalPayments(c echo.Context) error {
	idStr := c.QueryParam("account_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return apperr.Validation("invalid account_id %q", idStr)
	}
	accountType := models.AccountType(c.QueryParam("account_type"))

	var currency *models.Currency
	if v := c.QueryParam("currency"); v != "" {
		cur := models.Currency(v)
		if !cur.IsValid() {
			return apperr.Validation("invalid currency %q", v)
		}
		currency = &cur
	}

	total, err := h.payments.GetTotalPayments(c.Request().Context(), uint(id), accountType, currency)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"account_id":   id,
		"account_type": accountType,
		"total":        total,
	})
}

// RecordPartialPayment handles POST /api/partial-payments
func (h *PaymentHandler) RecordPartialPayment(c echo.Context) error {
	var req PartialPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.payments.RecordPartialPayment(
		c.Request().Context(),
		req.SaleID,
		req.Amount,
		models.Currency(req.Currency),
		models.PaymentMethod(req.PaymentMethod),
		req.Reference,
		req.ProcessedBy,
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPartialPayments handles GET /api/sales/:saleId/partial-payments
func (h *PaymentHandler) ListPartialPayments(c echo.Context) error {
	saleID, err := pathID(c, "saleId")
	if err != nil {
		return err
	}
	ps, err := h.payments.ListPartialPayments(c.Request().Context(), saleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ps)
}
