package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
)

// GormStore is the production Store backed by GORM/Postgres
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm.DB in the Store interface
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Receivables() Receivables         { return &gormReceivables{db: s.db} }
func (s *GormStore) Payables() Payables               { return &gormPayables{db: s.db} }
func (s *GormStore) Payments() Payments               { return &gormPayments{db: s.db} }
func (s *GormStore) Plans() Plans                     { return &gormPlans{db: s.db} }
func (s *GormStore) Installments() Installments       { return &gormInstallments{db: s.db} }
func (s *GormStore) PartialPayments() PartialPayments { return &gormPartialPayments{db: s.db} }

// Atomic runs fn inside a database transaction
func (s *GormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// wrapErr translates gorm errors into the ledger's error classes
func wrapErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", notFoundMsg)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("duplicate key: %s", err.Error())
	}
	return apperr.Persistence(err)
}

// ===================== Receivables =====================

type gormReceivables struct {
	db *gorm.DB
}

func (r *gormReceivables) Create(ctx context.Context, rec *models.AccountReceivable) error {
	return wrapErr(r.db.WithContext(ctx).Create(rec).Error, "")
}

func (r *gormReceivables) GetByID(ctx context.Context, id uint) (*models.AccountReceivable, error) {
	var rec models.AccountReceivable
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, wrapErr(err, "receivable not found")
	}
	return &rec, nil
}

func (r *gormReceivables) GetForUpdate(ctx context.Context, id uint) (*models.AccountReceivable, error) {
	var rec models.AccountReceivable
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, id).Error
	if err != nil {
		return nil, wrapErr(err, "receivable not found")
	}
	return &rec, nil
}

func (r *gormReceivables) List(ctx context.Context, f ReceivableFilter) ([]models.AccountReceivable, error) {
	q := r.db.WithContext(ctx).Model(&models.AccountReceivable{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Currency != nil {
		q = q.Where("currency = ?", *f.Currency)
	}
	if f.SaleID != nil {
		q = q.Where("sale_id = ?", *f.SaleID)
	}
	if f.DueFrom != nil {
		q = q.Where("due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		q = q.Where("due_date <= ?", *f.DueTo)
	}

	var recs []models.AccountReceivable
	if err := q.Order("due_date asc").Find(&recs).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return recs, nil
}

func (r *gormReceivables) UpdateStatus(ctx context.Context, id uint, status models.AccountStatus) error {
	res := r.db.WithContext(ctx).Model(&models.AccountReceivable{}).
		Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperr.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("receivable %d not found", id)
	}
	return nil
}

func (r *gormReceivables) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.AccountReceivable{}, id)
	if res.Error != nil {
		return apperr.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("receivable %d not found", id)
	}
	return nil
}

func (r *gormReceivables) UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.AccountReceivable{}).
		Where("due_date < ? AND status IN ?", cutoff, from).
		Update("status", to)
	if res.Error != nil {
		return 0, apperr.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}

// ===================== Payables =====================

type gormPayables struct {
	db *gorm.DB
}

func (r *gormPayables) Create(ctx context.Context, p *models.AccountPayable) error {
	return wrapErr(r.db.WithContext(ctx).Create(p).Error, "")
}

func (r *gormPayables) GetByID(ctx context.Context, id uint) (*models.AccountPayable, error) {
	var p models.AccountPayable
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, wrapErr(err, "payable not found")
	}
	return &p, nil
}

func (r *gormPayables) GetForUpdate(ctx context.Context, id uint) (*models.AccountPayable, error) {
	var p models.AccountPayable
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, wrapErr(err, "payable not found")
	}
	return &p, nil
}

func (r *gormPayables) List(ctx context.Context, f PayableFilter) ([]models.AccountPayable, error) {
	q := r.db.WithContext(ctx).Model(&models.AccountPayable{})
	if f.EntityType != nil {
		q = q.Where("entity_type = ?", *f.EntityType)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Currency != nil {
		q = q.Where("currency = ?", *f.Currency)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.DueFrom != nil {
		q = q.Where("due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		q = q.Where("due_date <= ?", *f.DueTo)
	}

	var ps []models.AccountPayable
	if err := q.Order("due_date asc").Find(&ps).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return ps, nil
}

func (r *gormPayables) UpdateStatus(ctx context.Context, id uint, status models.AccountStatus) error {
	res := r.db.WithContext(ctx).Model(&models.AccountPayable{}).
		Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperr.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("payable %d not found", id)
	}
	return nil
}

func (r *gormPayables) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.AccountPayable{}, id)
	if res.Error != nil {
		return apperr.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("payable %d not found", id)
	}
	return nil
}

func (r *gormPayables) UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.AccountPayable{}).
		Where("due_date < ? AND status IN ?", cutoff, from).
		Update("status", to)
	if res.Error != nil {
		return 0, apperr.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}

// ===================== Payments =====================

type gormPayments struct {
	db *gorm.DB
}

func (r *gormPayments) Create(ctx context.Context, p *models.Payment) error {
	return wrapErr(r.db.WithContext(ctx).Create(p).Error, "")
}

func (r *gormPayments) ListByAccount(ctx context.Context, accountID uint, accountType models.AccountType) ([]models.Payment, error) {
	var ps []models.Payment
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND account_type = ?", accountID, accountType).
		Order("processed_at desc").
		Find(&ps).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return ps, nil
}

func (r *gormPayments) Sum(ctx context.Context, accountID uint, accountType models.AccountType, currency *models.Currency) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("account_id = ? AND account_type = ?", accountID, accountType)
	if currency != nil {
		q = q.Where("currency = ?", *currency)
	}

	var total decimal.NullDecimal
	if err := q.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return decimal.Zero, apperr.Persistence(err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *gormPayments) SumByAccountIDs(ctx context.Context, accountType models.AccountType, ids []uint) (map[uint]decimal.Decimal, error) {
	sums := make(map[uint]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return sums, nil
	}

	var rows []struct {
		AccountID uint
		Total     decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("account_id, SUM(amount) AS total").
		Where("account_type = ? AND account_id IN ?", accountType, ids).
		Group("account_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	for _, row := range rows {
		sums[row.AccountID] = row.Total
	}
	return sums, nil
}

// ===================== Plans =====================

type gormPlans struct {
	db *gorm.DB
}

func (r *gormPlans) Create(ctx context.Context, p *models.PaymentPlan) error {
	// GORM cascades the Installments association in the same insert batch
	return wrapErr(r.db.WithContext(ctx).Create(p).Error, "")
}

func (r *gormPlans) GetByID(ctx context.Context, id uint) (*models.PaymentPlan, error) {
	var p models.PaymentPlan
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number asc")
		}).
		First(&p, id).Error
	if err != nil {
		return nil, wrapErr(err, "payment plan not found")
	}
	return &p, nil
}

func (r *gormPlans) GetForUpdate(ctx context.Context, id uint) (*models.PaymentPlan, error) {
	var p models.PaymentPlan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, wrapErr(err, "payment plan not found")
	}
	return &p, nil
}

func (r *gormPlans) List(ctx context.Context, f PlanFilter) ([]models.PaymentPlan, error) {
	q := r.db.WithContext(ctx).Model(&models.PaymentPlan{}).Preload("Installments")
	if f.SaleID != nil {
		q = q.Where("sale_id = ?", *f.SaleID)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var plans []models.PaymentPlan
	if err := q.Order("id desc").Find(&plans).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return plans, nil
}

func (r *gormPlans) UpdateStatus(ctx context.Context, id uint, status models.PlanStatus) error {
	res := r.db.WithContext(ctx).Model(&models.PaymentPlan{}).
		Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperr.Persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("payment plan %d not found", id)
	}
	return nil
}

// ===================== Installments =====================

type gormInstallments struct {
	db *gorm.DB
}

func (r *gormInstallments) GetByID(ctx context.Context, id uint) (*models.PaymentInstallment, error) {
	var inst models.PaymentInstallment
	if err := r.db.WithContext(ctx).First(&inst, id).Error; err != nil {
		return nil, wrapErr(err, "installment not found")
	}
	return &inst, nil
}

func (r *gormInstallments) GetForUpdate(ctx context.Context, id uint) (*models.PaymentInstallment, error) {
	var inst models.PaymentInstallment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inst, id).Error
	if err != nil {
		return nil, wrapErr(err, "installment not found")
	}
	return &inst, nil
}

func (r *gormInstallments) ListByPlan(ctx context.Context, planID uint) ([]models.PaymentInstallment, error) {
	var insts []models.PaymentInstallment
	err := r.db.WithContext(ctx).
		Where("payment_plan_id = ?", planID).
		Order("installment_number asc").
		Find(&insts).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return insts, nil
}

func (r *gormInstallments) ListDueBefore(ctx context.Context, cutoff time.Time, statuses []models.AccountStatus) ([]models.PaymentInstallment, error) {
	var insts []models.PaymentInstallment
	err := r.db.WithContext(ctx).
		Where("due_date < ? AND status IN ?", cutoff, statuses).
		Order("due_date asc").
		Find(&insts).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return insts, nil
}

func (r *gormInstallments) Update(ctx context.Context, inst *models.PaymentInstallment) error {
	return wrapErr(r.db.WithContext(ctx).Save(inst).Error, "")
}

func (r *gormInstallments) UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentInstallment{}).
		Where("due_date < ? AND status IN ?", cutoff, from).
		Update("status", to)
	if res.Error != nil {
		return 0, apperr.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}

// ===================== Partial payments =====================

type gormPartialPayments struct {
	db *gorm.DB
}

func (r *gormPartialPayments) Create(ctx context.Context, p *models.PartialPayment) error {
	return wrapErr(r.db.WithContext(ctx).Create(p).Error, "")
}

func (r *gormPartialPayments) ListBySale(ctx context.Context, saleID uint) ([]models.PartialPayment, error) {
	var ps []models.PartialPayment
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("processed_at desc").
		Find(&ps).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return ps, nil
}
