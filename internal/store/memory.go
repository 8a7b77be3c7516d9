package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/models"
)

// memData holds all records by id. Entities are stored by value so a
// shallow map copy is a full snapshot.
type memData struct {
	receivables  map[uint]models.AccountReceivable
	payables     map[uint]models.AccountPayable
	payments     map[uint]models.Payment
	plans        map[uint]models.PaymentPlan
	installments map[uint]models.PaymentInstallment
	partials     map[uint]models.PartialPayment
	nextID       uint
}

func newMemData() *memData {
	return &memData{
		receivables:  make(map[uint]models.AccountReceivable),
		payables:     make(map[uint]models.AccountPayable),
		payments:     make(map[uint]models.Payment),
		plans:        make(map[uint]models.PaymentPlan),
		installments: make(map[uint]models.PaymentInstallment),
		partials:     make(map[uint]models.PartialPayment),
	}
}

func (d *memData) snapshot() *memData {
	cp := newMemData()
	cp.nextID = d.nextID
	for k, v := range d.receivables {
		cp.receivables[k] = v
	}
	for k, v := range d.payables {
		cp.payables[k] = v
	}
	for k, v := range d.payments {
		cp.payments[k] = v
	}
	for k, v := range d.plans {
		cp.plans[k] = v
	}
	for k, v := range d.installments {
		cp.installments[k] = v
	}
	for k, v := range d.partials {
		cp.partials[k] = v
	}
	return cp
}

func (d *memData) id() uint {
	d.nextID++
	return d.nextID
}

// MemStore is an in-memory Store used by tests and local tooling. A single
// mutex serializes everything, which also satisfies the per-account
// serialization guarantee.
type MemStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{mu: &sync.Mutex{}, data: newMemData()}
}

func (s *MemStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemStore) Receivables() Receivables         { return &memReceivables{s} }
func (s *MemStore) Payables() Payables               { return &memPayables{s} }
func (s *MemStore) Payments() Payments               { return &memPayments{s} }
func (s *MemStore) Plans() Plans                     { return &memPlans{s} }
func (s *MemStore) Installments() Installments       { return &memInstallments{s} }
func (s *MemStore) PartialPayments() PartialPayments { return &memPartialPayments{s} }

// Atomic holds the store lock for the duration of fn and restores a
// pre-transaction snapshot if fn fails
func (s *MemStore) Atomic(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		// nested Atomic joins the outer unit
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.data.snapshot()
	tx := &MemStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *before
		return err
	}
	return nil
}

func stampCreate(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func statusIn(s models.AccountStatus, set []models.AccountStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// ===================== Receivables =====================

type memReceivables struct {
	s *MemStore
}

func (r *memReceivables) Create(ctx context.Context, rec *models.AccountReceivable) error {
	r.s.lock()
	defer r.s.unlock()
	for _, existing := range r.s.data.receivables {
		if existing.InvoiceNumber == rec.InvoiceNumber {
			return apperr.Conflict("invoice number %s already exists", rec.InvoiceNumber)
		}
	}
	rec.ID = r.s.data.id()
	stampCreate(&rec.CreatedAt, &rec.UpdatedAt)
	r.s.data.receivables[rec.ID] = *rec
	return nil
}

func (r *memReceivables) GetByID(ctx context.Context, id uint) (*models.AccountReceivable, error) {
	r.s.lock()
	defer r.s.unlock()
	rec, ok := r.s.data.receivables[id]
	if !ok {
		return nil, apperr.NotFound("receivable %d not found", id)
	}
	return &rec, nil
}

func (r *memReceivables) GetForUpdate(ctx context.Context, id uint) (*models.AccountReceivable, error) {
	return r.GetByID(ctx, id)
}

func (r *memReceivables) List(ctx context.Context, f ReceivableFilter) ([]models.AccountReceivable, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.AccountReceivable
	for _, rec := range r.s.data.receivables {
		if f.CustomerID != nil && rec.CustomerID != *f.CustomerID {
			continue
		}
		if f.Status != nil && rec.Status != *f.Status {
			continue
		}
		if f.Currency != nil && rec.Currency != *f.Currency {
			continue
		}
		if f.SaleID != nil && (rec.SaleID == nil || *rec.SaleID != *f.SaleID) {
			continue
		}
		if f.DueFrom != nil && rec.DueDate.Before(*f.DueFrom) {
			continue
		}
		if f.DueTo != nil && rec.DueDate.After(*f.DueTo) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memReceivables) UpdateStatus(ctx context.Context, id uint, status models.AccountStatus) error {
	r.s.lock()
	defer r.s.unlock()
	rec, ok := r.s.data.receivables[id]
	if !ok {
		return apperr.NotFound("receivable %d not found", id)
	}
	rec.Status = status
	rec.UpdatedAt = time.Now()
	r.s.data.receivables[id] = rec
	return nil
}

func (r *memReceivables) Delete(ctx context.Context, id uint) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.receivables[id]; !ok {
		return apperr.NotFound("receivable %d not found", id)
	}
	delete(r.s.data.receivables, id)
	return nil
}

func (r *memReceivables) UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for id, rec := range r.s.data.receivables {
		if rec.DueDate.Before(cutoff) && statusIn(rec.Status, from) {
			rec.Status = to
			rec.UpdatedAt = time.Now()
			r.s.data.receivables[id] = rec
			n++
		}
	}
	return n, nil
}

// ===================== Payables =====================

type memPayables struct {
	s *MemStore
}

func (r *memPayables) Create(ctx context.Context, p *models.AccountPayable) error {
	r.s.lock()
	defer r.s.unlock()
	for _, existing := range r.s.data.payables {
		if existing.BillNumber == p.BillNumber {
			return apperr.Conflict("bill number %s already exists", p.BillNumber)
		}
	}
	p.ID = r.s.data.id()
	stampCreate(&p.CreatedAt, &p.UpdatedAt)
	r.s.data.payables[p.ID] = *p
	return nil
}

func (r *memPayables) GetByID(ctx context.Context, id uint) (*models.AccountPayable, error) {
	r.s.lock()
	defer r.s.unlock()
	p, ok := r.s.data.payables[id]
	if !ok {
		return nil, apperr.NotFound("payable %d not found", id)
	}
	return &p, nil
}

func (r *memPayables) GetForUpdate(ctx context.Context, id uint) (*models.AccountPayable, error) {
	return r.GetByID(ctx, id)
}

func (r *memPayables) List(ctx context.Context, f PayableFilter) ([]models.AccountPayable, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.AccountPayable
	for _, p := range r.s.data.payables {
		if f.EntityType != nil && p.EntityType != *f.EntityType {
			continue
		}
		if f.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *f.SupplierID) {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Currency != nil && p.Currency != *f.Currency {
			continue
		}
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.DueFrom != nil && p.DueDate.Before(*f.DueFrom) {
			continue
		}
		if f.DueTo != nil && p.DueDate.After(*f.DueTo) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memPayables) UpdateStatus(ctx context.Context, id uint, status models.AccountStatus) error {
	r.s.lock()
	defer r.s.unlock()
	p, ok := r.s.data.payables[id]
	if !ok {
		return apperr.NotFound("payable %d not found", id)
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	r.s.data.payables[id] = p
	return nil
}

func (r *memPayables) Delete(ctx context.Context, id uint) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.payables[id]; !ok {
		return apperr.NotFound("payable %d not found", id)
	}
	delete(r.s.data.payables, id)
	return nil
}

func (r *memPayables) UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for id, p := range r.s.data.payables {
		if p.DueDate.Before(cutoff) && statusIn(p.Status, from) {
			p.Status = to
			p.UpdatedAt = time.Now()
			r.s.data.payables[id] = p
			n++
		}
	}
	return n, nil
}

// ===================== Payments =====================

type memPayments struct {
	s *MemStore
}

func (r *memPayments) Create(ctx context.Context, p *models.Payment) error {
	r.s.lock()
	defer r.s.unlock()
	p.ID = r.s.data.id()
	stampCreate(&p.CreatedAt, &p.UpdatedAt)
	r.s.data.payments[p.ID] = *p
	return nil
}

func (r *memPayments) ListByAccount(ctx context.Context, accountID uint, accountType models.AccountType) ([]models.Payment, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.Payment
	for _, p := range r.s.data.payments {
		if p.AccountID == accountID && p.AccountType == accountType {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	return out, nil
}

func (r *memPayments) Sum(ctx context.Context, accountID uint, accountType models.AccountType, currency *models.Currency) (decimal.Decimal, error) {
	r.s.lock()
	defer r.s.unlock()
	total := decimal.Zero
	for _, p := range r.s.data.payments {
		if p.AccountID != accountID || p.AccountType != accountType {
			continue
		}
		if currency != nil && p.Currency != *currency {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total, nil
}

func (r *memPayments) SumByAccountIDs(ctx context.Context, accountType models.AccountType, ids []uint) (map[uint]decimal.Decimal, error) {
	r.s.lock()
	defer r.s.unlock()
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	sums := make(map[uint]decimal.Decimal)
	for _, p := range r.s.data.payments {
		if p.AccountType != accountType || !want[p.AccountID] {
			continue
		}
		sums[p.AccountID] = sums[p.AccountID].Add(p.Amount)
	}
	return sums, nil
}

// ===================== Plans =====================

type memPlans struct {
	s *MemStore
}

func (r *memPlans) Create(ctx context.Context, p *models.PaymentPlan) error {
	r.s.lock()
	defer r.s.unlock()
	p.ID = r.s.data.id()
	stampCreate(&p.CreatedAt, &p.UpdatedAt)

	insts := p.Installments
	p.Installments = nil
	r.s.data.plans[p.ID] = *p

	for i := range insts {
		insts[i].ID = r.s.data.id()
		insts[i].PaymentPlanID = p.ID
		stampCreate(&insts[i].CreatedAt, &insts[i].UpdatedAt)
		inst := insts[i]
		inst.PaymentPlan = models.PaymentPlan{}
		r.s.data.installments[inst.ID] = inst
	}
	p.Installments = insts
	return nil
}

func (r *memPlans) GetByID(ctx context.Context, id uint) (*models.PaymentPlan, error) {
	r.s.lock()
	defer r.s.unlock()
	return r.get(id)
}

func (r *memPlans) get(id uint) (*models.PaymentPlan, error) {
	p, ok := r.s.data.plans[id]
	if !ok {
		return nil, apperr.NotFound("payment plan %d not found", id)
	}
	for _, inst := range r.s.data.installments {
		if inst.PaymentPlanID == id {
			p.Installments = append(p.Installments, inst)
		}
	}
	sort.Slice(p.Installments, func(i, j int) bool {
		return p.Installments[i].InstallmentNumber < p.Installments[j].InstallmentNumber
	})
	return &p, nil
}

func (r *memPlans) GetForUpdate(ctx context.Context, id uint) (*models.PaymentPlan, error) {
	return r.GetByID(ctx, id)
}

func (r *memPlans) List(ctx context.Context, f PlanFilter) ([]models.PaymentPlan, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.PaymentPlan
	for id, p := range r.s.data.plans {
		if f.SaleID != nil && p.SaleID != *f.SaleID {
			continue
		}
		if f.CustomerID != nil && p.CustomerID != *f.CustomerID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		full, _ := r.get(id)
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memPlans) UpdateStatus(ctx context.Context, id uint, status models.PlanStatus) error {
	r.s.lock()
	defer r.s.unlock()
	p, ok := r.s.data.plans[id]
	if !ok {
		return apperr.NotFound("payment plan %d not found", id)
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	r.s.data.plans[id] = p
	return nil
}

// ===================== Installments =====================

type memInstallments struct {
	s *MemStore
}

func (r *memInstallments) GetByID(ctx context.Context, id uint) (*models.PaymentInstallment, error) {
	r.s.lock()
	defer r.s.unlock()
	inst, ok := r.s.data.installments[id]
	if !ok {
		return nil, apperr.NotFound("installment %d not found", id)
	}
	return &inst, nil
}

func (r *memInstallments) GetForUpdate(ctx context.Context, id uint) (*models.PaymentInstallment, error) {
	return r.GetByID(ctx, id)
}

func (r *memInstallments) ListByPlan(ctx context.Context, planID uint) ([]models.PaymentInstallment, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.PaymentInstallment
	for _, inst := range r.s.data.installments {
		if inst.PaymentPlanID == planID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}

func (r *memInstallments) ListDueBefore(ctx context.Context, cutoff time.Time, statuses []models.AccountStatus) ([]models.PaymentInstallment, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.PaymentInstallment
	for _, inst := range r.s.data.installments {
		if inst.DueDate.Before(cutoff) && statusIn(inst.Status, statuses) {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memInstallments) Update(ctx context.Context, inst *models.PaymentInstallment) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.installments[inst.ID]; !ok {
		return apperr.NotFound("installment %d not found", inst.ID)
	}
	inst.UpdatedAt = time.Now()
	cp := *inst
	cp.PaymentPlan = models.PaymentPlan{}
	r.s.data.installments[inst.ID] = cp
	return nil
}

func (r *memInstallments) UpdateStatusWhereDue(ctx context.Context, from []models.AccountStatus, cutoff time.Time, to models.AccountStatus) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for id, inst := range r.s.data.installments {
		if inst.DueDate.Before(cutoff) && statusIn(inst.Status, from) {
			inst.Status = to
			inst.UpdatedAt = time.Now()
			r.s.data.installments[id] = inst
			n++
		}
	}
	return n, nil
}

// ===================== Partial payments =====================

type memPartialPayments struct {
	s *MemStore
}

func (r *memPartialPayments) Create(ctx context.Context, p *models.PartialPayment) error {
	r.s.lock()
	defer r.s.unlock()
	p.ID = r.s.data.id()
	stampCreate(&p.CreatedAt, &p.UpdatedAt)
	r.s.data.partials[p.ID] = *p
	return nil
}

func (r *memPartialPayments) ListBySale(ctx context.Context, saleID uint) ([]models.PartialPayment, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.PartialPayment
	for _, p := range r.s.data.partials {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	return out, nil
}
