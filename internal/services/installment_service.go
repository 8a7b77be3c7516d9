package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/logger"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/store"
)

// InstallmentService builds payment plans and applies installment payments
type InstallmentService struct {
	store store.Store
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(s store.Store) *InstallmentService {
	return &InstallmentService{store: s}
}

// CreatePlanInput carries the fields for a new payment plan
type CreatePlanInput struct {
	SaleID               uint
	CustomerID           uint
	TotalAmount          decimal.Decimal
	Currency             models.Currency
	NumberOfInstallments int
	Frequency            models.InstallmentFrequency
	FirstPaymentDate     time.Time
}

// installmentDueDate computes the due date of the i-th installment (0-indexed)
func installmentDueDate(first time.Time, frequency models.InstallmentFrequency, i int) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return first.AddDate(0, 0, 7*i)
	case models.FrequencyBiweekly:
		return first.AddDate(0, 0, 14*i)
	default:
		return first.AddDate(0, i, 0)
	}
}

// splitAmount divides total into n two-decimal slices. The final slice
// absorbs the rounding remainder so the slices sum to total exactly.
func splitAmount(total decimal.Decimal, n int) []decimal.Decimal {
	base := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	amounts := make([]decimal.Decimal, n)
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		amounts[i] = base
		running = running.Add(base)
	}
	amounts[n-1] = total.Sub(running)
	return amounts
}

// CreatePaymentPlan creates the plan and all its installments atomically.
// Installment amounts are equal slices of the total except the last, which
// absorbs the rounding remainder.
func (s *InstallmentService) CreatePaymentPlan(ctx context.Context, in CreatePlanInput) (*models.PaymentPlan, error) {
	if in.SaleID == 0 {
		return nil, apperr.Validation("sale id is required")
	}
	if in.CustomerID == 0 {
		return nil, apperr.Validation("customer id is required")
	}
	if in.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("total amount must be greater than zero")
	}
	if !in.Currency.IsValid() {
		return nil, apperr.Validation("unsupported currency %q", in.Currency)
	}
	if in.NumberOfInstallments < 1 {
		return nil, apperr.Validation("number of installments must be at least 1")
	}
	if !in.Frequency.IsValid() {
		return nil, apperr.Validation("unknown frequency %q", in.Frequency)
	}
	if in.FirstPaymentDate.IsZero() {
		return nil, apperr.Validation("first payment date is required")
	}

	amounts := splitAmount(in.TotalAmount, in.NumberOfInstallments)
	installments := make([]models.PaymentInstallment, in.NumberOfInstallments)
	for i := range installments {
		installments[i] = models.PaymentInstallment{
			InstallmentNumber: i + 1,
			DueDate:           installmentDueDate(in.FirstPaymentDate, in.Frequency, i),
			Amount:            amounts[i],
			PaidAmount:        decimal.Zero,
			Status:            models.AccountStatusPending,
		}
	}

	plan := &models.PaymentPlan{
		UUID:         uuid.New().String(),
		SaleID:       in.SaleID,
		CustomerID:   in.CustomerID,
		TotalAmount:  in.TotalAmount,
		Currency:     in.Currency,
		Status:       models.PlanStatusActive,
		Installments: installments,
	}

	err := s.store.Atomic(ctx, func(tx store.Store) error {
		return tx.Plans().Create(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("installments").Info().
		Uint("plan_id", plan.ID).
		Uint("sale_id", in.SaleID).
		Int("installments", in.NumberOfInstallments).
		Str("total", in.TotalAmount.String()).
		Msg("payment plan created")
	return plan, nil
}

// ProcessInstallmentPayment applies a payment to one installment. The paid
// timestamp is set only on the transition into paid. The owning plan's
// completion is re-checked inside the same atomic unit.
func (s *InstallmentService) ProcessInstallmentPayment(ctx context.Context, installmentID uint, amount decimal.Decimal, method models.PaymentMethod, reference string) (*models.PaymentInstallment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("payment amount must be greater than zero")
	}
	if !method.IsValid() {
		return nil, apperr.Validation("unknown payment method %q", method)
	}

	var result *models.PaymentInstallment
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		inst, err := tx.Installments().GetForUpdate(ctx, installmentID)
		if err != nil {
			return err
		}
		plan, err := tx.Plans().GetByID(ctx, inst.PaymentPlanID)
		if err != nil {
			return err
		}
		if plan.Status != models.PlanStatusActive {
			return apperr.Conflict("plan %d is %s and does not accept payments", plan.ID, plan.Status)
		}
		if inst.Status == models.AccountStatusPaid {
			return apperr.Conflict("installment %d is already paid", installmentID)
		}

		newPaid := inst.PaidAmount.Add(amount)
		inst.PaymentMethod = method
		inst.TransactionReference = reference
		if newPaid.GreaterThanOrEqual(inst.Amount) {
			// paid amount never exceeds the slice amount
			inst.PaidAmount = inst.Amount
			inst.Status = models.AccountStatusPaid
			now := time.Now()
			inst.PaidAt = &now
		} else {
			inst.PaidAmount = newPaid
			inst.Status = models.AccountStatusPartial
		}

		if err := tx.Installments().Update(ctx, inst); err != nil {
			return err
		}
		result = inst

		if inst.Status == models.AccountStatusPaid {
			return checkCompletion(ctx, tx, inst.PaymentPlanID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CheckPlanCompletion marks the plan completed iff every installment is paid.
// Idempotent; a completed plan is never reverted.
func (s *InstallmentService) CheckPlanCompletion(ctx context.Context, planID uint) error {
	return s.store.Atomic(ctx, func(tx store.Store) error {
		return checkCompletion(ctx, tx, planID)
	})
}

func checkCompletion(ctx context.Context, tx store.Store, planID uint) error {
	plan, err := tx.Plans().GetForUpdate(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Status != models.PlanStatusActive {
		return nil
	}

	installments, err := tx.Installments().ListByPlan(ctx, planID)
	if err != nil {
		return err
	}
	for _, inst := range installments {
		if inst.Status != models.AccountStatusPaid {
			return nil
		}
	}

	if err := tx.Plans().UpdateStatus(ctx, planID, models.PlanStatusCompleted); err != nil {
		return err
	}
	logger.WithComponent("installments").Info().
		Uint("plan_id", planID).
		Msg("payment plan completed")
	return nil
}

// CancelPlan cancels an active plan. Completed or already cancelled plans
// are rejected with a conflict.
func (s *InstallmentService) CancelPlan(ctx context.Context, planID uint) error {
	return s.store.Atomic(ctx, func(tx store.Store) error {
		plan, err := tx.Plans().GetForUpdate(ctx, planID)
		if err != nil {
			return err
		}
		if plan.Status != models.PlanStatusActive {
			return apperr.Conflict("plan %d is %s and cannot be cancelled", planID, plan.Status)
		}
		return tx.Plans().UpdateStatus(ctx, planID, models.PlanStatusCancelled)
	})
}

// GetPlan returns a plan with its installments ordered by number
func (s *InstallmentService) GetPlan(ctx context.Context, planID uint) (*models.PaymentPlan, error) {
	return s.store.Plans().GetByID(ctx, planID)
}

// ListPlans returns plans matching the filter
func (s *InstallmentService) ListPlans(ctx context.Context, f store.PlanFilter) ([]models.PaymentPlan, error) {
	return s.store.Plans().List(ctx, f)
}

// ListOverdueInstallments returns installments past due that are still unpaid
func (s *InstallmentService) ListOverdueInstallments(ctx context.Context, asOf time.Time) ([]models.PaymentInstallment, error) {
	return s.store.Installments().ListDueBefore(ctx, asOf, []models.AccountStatus{models.AccountStatusOverdue})
}
