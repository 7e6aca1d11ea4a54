package report

import (
	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

type (
	Service interface {
		StudentBalance(studentID string) (fees.StudentBalance, error)
		Balances() ([]BalanceRow, error)
		ByClass() ([]GroupSummary, error)
		ByStop() ([]GroupSummary, error)
		BySection() ([]GroupSummary, error)
		ByMonth() ([]MonthSummary, error)
	}

	service struct {
		studentSvc student.Service
		paymentSvc payment.Service
		feesSvc    fees.Service
	}
)

var _ Service = (*service)(nil)

func NewService(studentSvc student.Service, paymentSvc payment.Service, feesSvc fees.Service) Service {
	return &service{
		studentSvc: studentSvc,
		paymentSvc: paymentSvc,
		feesSvc:    feesSvc,
	}
}

func (svc *service) StudentBalance(studentID string) (fees.StudentBalance, error) {
	st, err := svc.studentSvc.GetByID(studentID)
	if err != nil {
		return fees.StudentBalance{}, errors.Wrap(err, "finding student")
	}
	cfg, err := svc.feesSvc.Get()
	if err != nil {
		return fees.StudentBalance{}, err
	}
	payments, err := svc.paymentSvc.QueryForStudent(st.ID)
	if err != nil {
		return fees.StudentBalance{}, err
	}
	return fees.ComputeStudentBalance(st, cfg, payments), nil
}

func (svc *service) Balances() ([]BalanceRow, error) {
	students, payments, cfg, err := svc.load()
	if err != nil {
		return nil, err
	}
	return BalanceRows(students, payments, cfg), nil
}

// load fetches the three inputs every group rollup needs.
func (svc *service) load() ([]student.Student, []payment.Payment, fees.Config, error) {
	students, err := svc.studentSvc.Query(nil, nil)
	if err != nil {
		return nil, nil, fees.Config{}, errors.Wrap(err, "loading students")
	}
	payments, err := svc.paymentSvc.Query(nil, nil)
	if err != nil {
		return nil, nil, fees.Config{}, errors.Wrap(err, "loading payments")
	}
	cfg, err := svc.feesSvc.Get()
	if err != nil {
		return nil, nil, fees.Config{}, err
	}
	return students, payments, cfg, nil
}

func (svc *service) ByClass() ([]GroupSummary, error) {
	students, payments, cfg, err := svc.load()
	if err != nil {
		return nil, err
	}
	return RollupByClass(students, payments, cfg), nil
}

func (svc *service) ByStop() ([]GroupSummary, error) {
	students, payments, cfg, err := svc.load()
	if err != nil {
		return nil, err
	}
	return RollupByStop(students, payments, cfg), nil
}

func (svc *service) BySection() ([]GroupSummary, error) {
	students, payments, cfg, err := svc.load()
	if err != nil {
		return nil, err
	}
	return RollupBySection(students, payments, cfg), nil
}

func (svc *service) ByMonth() ([]MonthSummary, error) {
	payments, err := svc.paymentSvc.Query(nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "loading payments")
	}
	return RollupByMonth(payments), nil
}
