package handlers

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

// CreateInvoiceRequest is the payload for creating a receivable
type CreateInvoiceRequest struct {
	CustomerID    uint            `json:"customer_id"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DueDate       string          `json:"due_date"`
	Description   string          `json:"description,omitempty"`
	SaleID        *uint           `json:"sale_id,omitempty"`
}

// CreateBillRequest is the payload for creating a payable
type CreateBillRequest struct {
	EntityType string          `json:"entity_type"`
	SupplierID *uint           `json:"supplier_id,omitempty"`
	EntityName string          `json:"entity_name,omitempty"`
	BillNumber string          `json:"bill_number,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	DueDate    string          `json:"due_date"`
	Category   string          `json:"category,omitempty"`
	ExpenseID  *uint           `json:"expense_id,omitempty"`
}

// RecordPaymentRequest is the payload for recording a payment
type RecordPaymentRequest struct {
	AccountID      uint            `json:"account_id"`
	AccountType    string          `json:"account_type"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentMethod  string          `json:"payment_method"`
	Reference      string          `json:"reference,omitempty"`
	LastFourDigits string          `json:"last_four_digits,omitempty"`
	ZelleEmail     string          `json:"zelle_email,omitempty"`
	ZellePhone     string          `json:"zelle_phone,omitempty"`
}

// CreatePlanRequest is the payload for creating a payment plan
type CreatePlanRequest struct {
	SaleID               uint            `json:"sale_id"`
	CustomerID           uint            `json:"customer_id"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Currency             string          `json:"currency"`
	NumberOfInstallments int             `json:"number_of_installments"`
	Frequency            string          `json:"frequency"`
	FirstPaymentDate     string          `json:"first_payment_date"`
}

// InstallmentPaymentRequest is the payload for paying toward one installment
type InstallmentPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Reference     string          `json:"reference,omitempty"`
}

// PartialPaymentRequest is the payload for an unstructured sale payment
type PartialPaymentRequest struct {
	SaleID        uint            `json:"sale_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Reference     string          `json:"reference,omitempty"`
	ProcessedBy   string          `json:"processed_by,omitempty"`
}

// parseDate accepts RFC3339 or a plain date
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q, expected RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// pathID parses the numeric id segment of the request path
func pathID(c echo.Context, name string) (uint, error) {
	val, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || val == 0 {
		return 0, apperr.Validation("invalid %s %q", name, c.Param(name))
	}
	return uint(val), nil
}

// receivableFilterFromQuery builds a receivable filter from query params
func receivableFilterFromQuery(c echo.Context) (store.ReceivableFilter, error) {
	var f store.ReceivableFilter
	if v := c.QueryParam("customer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, apperr.Validation("invalid customer_id %q", v)
		}
		cid := uint(id)
		f.CustomerID = &cid
	}
	if v := c.QueryParam("status"); v != "" {
		status := models.AccountStatus(v)
		if !status.IsValid() {
			return f, apperr.Validation("invalid status %q", v)
		}
		f.Status = &status
	}
	if v := c.QueryParam("currency"); v != "" {
		currency := models.Currency(v)
		if !currency.IsValid() {
			return f, apperr.Validation("invalid currency %q", v)
		}
		f.Currency = &currency
	}
	if v := c.QueryParam("due_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.DueFrom = &t
	}
	if v := c.QueryParam("due_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.DueTo = &t
	}
	return f, nil
}

// payableFilterFromQuery builds a payable filter from query params
func payableFilterFromQuery(c echo.Context) (store.PayableFilter, error) {
	var f store.PayableFilter
	if v := c.QueryParam("entity_type"); v != "" {
		et := models.PayableEntityType(v)
		if !et.IsValid() {
			return f, apperr.Validation("invalid entity_type %q", v)
		}
		f.EntityType = &et
	}
	if v := c.QueryParam("supplier_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, apperr.Validation("invalid supplier_id %q", v)
		}
		sid := uint(id)
		f.SupplierID = &sid
	}
	if v := c.QueryParam("status"); v != "" {
		status := models.AccountStatus(v)
		if !status.IsValid() {
			return f, apperr.Validation("invalid status %q", v)
		}
		f.Status = &status
	}
	if v := c.QueryParam("currency"); v != "" {
		currency := models.Currency(v)
		if !currency.IsValid() {
			return f, apperr.Validation("invalid currency %q", v)
		}
		f.Currency = &currency
	}
	if v := c.QueryParam("category"); v != "" {
		category := v
		f.Category = &category
	}
	if v := c.QueryParam("due_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.DueFrom = &t
	}
	if v := c.QueryParam("due_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.DueTo = &t
	}
	return f, nil
}
