package services

import (
	"context"
	"net/mail"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/logger"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

// Venezuelan mobile numbers: +58 followed by the 10-digit subscriber number,
// or the domestic 04XX form.
var zellePhonePattern = regexp.MustCompile(`^(\+58\d{10}|04\d{9})$`)

// PaymentService records payments and keeps account status in sync with them
type PaymentService struct {
	store store.Store
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(s store.Store) *PaymentService {
	return &PaymentService{store: s}
}

// RecordPaymentInput carries the fields for a new payment
type RecordPaymentInput struct {
	AccountID      uint
	AccountType    models.AccountType
	Amount         decimal.Decimal
	Currency       models.Currency
	Method         models.PaymentMethod
	Reference      string
	LastFourDigits string
	ZelleEmail     string
	ZellePhone     string
}

func (in RecordPaymentInput) validate() error {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return apperr.Validation("payment amount must be greater than zero")
	}
	if !in.AccountType.IsValid() {
		return apperr.Validation("unknown account type %q", in.AccountType)
	}
	if !in.Currency.IsValid() {
		return apperr.Validation("unsupported currency %q", in.Currency)
	}
	if !in.Method.IsValid() {
		return apperr.Validation("unknown payment method %q", in.Method)
	}
	if in.Method == models.PaymentMethodZelle {
		if in.ZelleEmail == "" && in.ZellePhone == "" {
			return apperr.Validation("zelle payments require an email or phone reference")
		}
		if in.ZelleEmail != "" {
			if _, err := mail.ParseAddress(in.ZelleEmail); err != nil {
				return apperr.Validation("invalid zelle email %q", in.ZelleEmail)
			}
		}
		if in.ZellePhone != "" && !zellePhonePattern.MatchString(in.ZellePhone) {
			return apperr.Validation("invalid zelle phone %q", in.ZellePhone)
		}
	}
	return nil
}

// deriveStatus computes the account status from its amount and the summed
// payments against it. The paid state is terminal.
func deriveStatus(current models.AccountStatus, amount, totalPaid decimal.Decimal) models.AccountStatus {
	if current == models.AccountStatusPaid {
		return models.AccountStatusPaid
	}
	outstanding := amount.Sub(totalPaid)
	switch {
	case outstanding.LessThanOrEqual(decimal.Zero):
		return models.AccountStatusPaid
	case totalPaid.GreaterThan(decimal.Zero):
		return models.AccountStatusPartial
	default:
		return models.AccountStatusPending
	}
}

// RecordPayment validates the payment, then inserts it and recomputes the
// account status as one atomic unit: either both land or neither does. The
// account row is read under a write lock so concurrent payments against the
// same account serialize. A payment against an already settled account is
// rejected with a conflict.
func (s *PaymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		AccountID:      in.AccountID,
		AccountType:    in.AccountType,
		Amount:         in.Amount,
		Currency:       in.Currency,
		PaymentMethod:  in.Method,
		Reference:      in.Reference,
		LastFourDigits: in.LastFourDigits,
		ZelleEmail:     in.ZelleEmail,
		ZellePhone:     in.ZellePhone,
		ProcessedAt:    time.Now(),
	}

	err := s.store.Atomic(ctx, func(tx store.Store) error {
		amount, status, err := lockAccount(ctx, tx, in.AccountID, in.AccountType)
		if err != nil {
			return err
		}
		if status == models.AccountStatusPaid {
			return apperr.Conflict("account %d is already settled", in.AccountID)
		}

		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}

		totalPaid, err := tx.Payments().Sum(ctx, in.AccountID, in.AccountType, nil)
		if err != nil {
			return err
		}
		newStatus := deriveStatus(status, amount, totalPaid)
		if newStatus == status {
			return nil
		}
		return updateAccountStatus(ctx, tx, in.AccountID, in.AccountType, newStatus)
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("payments").Info().
		Uint("account_id", in.AccountID).
		Str("account_type", string(in.AccountType)).
		Str("method", string(in.Method)).
		Str("amount", in.Amount.String()).
		Msg("payment recorded")
	return payment, nil
}

func lockAccount(ctx context.Context, tx store.Store, id uint, accountType models.AccountType) (decimal.Decimal, models.AccountStatus, error) {
	switch accountType {
	case models.AccountTypeReceivable:
		rec, err := tx.Receivables().GetForUpdate(ctx, id)
		if err != nil {
			return decimal.Zero, "", err
		}
		return rec.Amount, rec.Status, nil
	default:
		p, err := tx.Payables().GetForUpdate(ctx, id)
		if err != nil {
			return decimal.Zero, "", err
		}
		return p.Amount, p.Status, nil
	}
}

func updateAccountStatus(ctx context.Context, tx store.Store, id uint, accountType models.AccountType, status models.AccountStatus) error {
	if accountType == models.AccountTypeReceivable {
		return tx.Receivables().UpdateStatus(ctx, id, status)
	}
	return tx.Payables().UpdateStatus(ctx, id, status)
}

// GetPaymentHistory returns the payments against an account, most recent first
func (s *PaymentService) GetPaymentHistory(ctx context.Context, accountID uint, accountType models.AccountType) ([]models.Payment, error) {
	if !accountType.IsValid() {
		return nil, apperr.Validation("unknown account type %q", accountType)
	}
	return s.store.Payments().ListByAccount(ctx, accountID, accountType)
}

// GetTotalPayments sums payments against an account. With a currency the sum
// covers only that currency; amounts in different currencies are never
// combined into one figure.
func (s *PaymentService) GetTotalPayments(ctx context.Context, accountID uint, accountType models.AccountType, currency *models.Currency) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, apperr.Validation("unknown account type %q", accountType)
	}
	return s.store.Payments().Sum(ctx, accountID, accountType, currency)
}

// RecordPartialPayment records an unstructured payment against a sale,
// outside both the account ledger and the installment ledger
func (s *PaymentService) RecordPartialPayment(ctx context.Context, saleID uint, amount decimal.Decimal, currency models.Currency, method models.PaymentMethod, reference, processedBy string) (*models.PartialPayment, error) {
	if saleID == 0 {
		return nil, apperr.Validation("sale id is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("payment amount must be greater than zero")
	}
	if !currency.IsValid() {
		return nil, apperr.Validation("unsupported currency %q", currency)
	}
	if !method.IsValid() {
		return nil, apperr.Validation("unknown payment method %q", method)
	}

	p := &models.PartialPayment{
		SaleID:        saleID,
		Amount:        amount,
		Currency:      currency,
		PaymentMethod: method,
		Reference:     reference,
		ProcessedBy:   processedBy,
		ProcessedAt:   time.Now(),
	}
	if err := s.store.PartialPayments().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPartialPayments returns the partial payments recorded against a sale
func (s *PaymentService) ListPartialPayments(ctx context.Context, saleID uint) ([]models.PartialPayment, error) {
	return s.store.PartialPayments().ListBySale(ctx, saleID)
}
