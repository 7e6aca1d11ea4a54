package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/payment"
)

type paymentRepository struct {
	db       *paymentTable
	students *studentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db.payment, students: db.student}
}

func (repo *paymentRepository) query() []payment.Payment {
	payments := make([]payment.Payment, 0, len(repo.db.t))
	for _, p := range repo.db.t {
		payments = append(payments, *p)
	}
	return payments
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p.ID = uuid.New().String()
	repo.db.t[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) GetPaymentByID(_ context.Context, id string) (payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.t[id]; ok {
		return *p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryPayments(_ context.Context, filter *payment.QueryFilter, ordering []core.DBOrdering) ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// the stop filter goes through the student table since payments only
	// carry the student reference
	stopRiders := make(map[string]bool)
	if filter != nil && filter.BusStop != "" {
		repo.students.mutex.RLock()
		for id, st := range repo.students.t {
			if st.BusStop == filter.BusStop {
				stopRiders[id] = true
			}
		}
		repo.students.mutex.RUnlock()
	}

	payments := make([]payment.Payment, 0)
	for _, p := range repo.query() {
		if !matchesPaymentFilter(p, filter, stopRiders) {
			continue
		}
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaymentDate.After(payments[j].PaymentDate) })
	return payments, nil
}

func matchesPaymentFilter(p payment.Payment, filter *payment.QueryFilter, stopRiders map[string]bool) bool {
	if filter == nil {
		return true
	}
	if filter.StudentID != "" && p.StudentID != filter.StudentID {
		return false
	}
	if filter.Class != "" && p.Class != filter.Class {
		return false
	}
	if filter.Division != "" && p.Division != filter.Division {
		return false
	}
	if filter.BusStop != "" && !stopRiders[p.StudentID] {
		return false
	}
	if !filter.DateFrom.IsZero() && p.PaymentDate.Before(filter.DateFrom) {
		return false
	}
	if !filter.DateTo.IsZero() && p.PaymentDate.After(filter.DateTo) {
		return false
	}
	return true
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.t[p.ID]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	orig.DevelopmentFee = p.DevelopmentFee
	orig.BusFee = p.BusFee
	orig.SpecialFee = p.SpecialFee
	orig.SpecialFeeType = p.SpecialFeeType
	orig.TotalAmount = p.TotalAmount
	orig.UpdatedAt = p.UpdatedAt
	return *orig, nil
}

func (repo *paymentRepository) DeletePaymentsByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.t[id]; ok {
			delete(repo.db.t, id)
			cnt++
		}
	}
	return cnt, nil
}
