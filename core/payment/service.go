package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

var (
	// errors
	ErrNotFound    = errors.New("payment not found")
	errZeroPayment = errors.New("payment must have at least one non-zero amount")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		// QueryPayments applies AND operation on available QueryFilter fields.
		// Results are ordered by PaymentDate descending unless overridden.
		QueryPayments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		DeletePaymentsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Create(np NewPayment, addedBy string) (Payment, error)
		GetByID(id string) (Payment, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Payment, error)
		QueryForStudent(studentID string) ([]Payment, error)
		Update(id string, up UpdatePayment) (Payment, error)
		Delete(ids ...string) error
	}

	service struct {
		repo       Repository
		studentSvc student.Service
		smsSvc     core.SMSService
		conf       *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, studentSvc student.Service, smsSvc core.SMSService, conf *core.Config) Service {
	return &service{
		repo:       repo,
		studentSvc: studentSvc,
		smsSvc:     smsSvc,
		conf:       conf,
	}
}

// Create records a payment with a snapshot of the student's identity and
// notifies the guardian mobile. Notification is fire-and-forget: a failed
// SMS never rolls back the recorded payment.
func (svc *service) Create(np NewPayment, addedBy string) (Payment, error) {
	st, err := svc.studentSvc.GetByID(np.StudentID)
	if err != nil {
		return Payment{}, errors.Wrap(err, "finding student")
	}

	now := time.Now().UTC()
	p := Payment{
		StudentID:      st.ID,
		StudentName:    st.Name,
		AdmissionNo:    st.AdmissionNo,
		Class:          st.Class,
		Division:       st.Division,
		DevelopmentFee: np.DevelopmentFee,
		BusFee:         np.BusFee,
		SpecialFee:     np.SpecialFee,
		SpecialFeeType: np.SpecialFeeType,
		TotalAmount:    np.DevelopmentFee + np.BusFee + np.SpecialFee,
		PaymentDate:    now,
		AddedBy:        addedBy,
		UpdatedAt:      now,
	}

	p, err = svc.repo.CreatePayment(context.Background(), p)
	if err != nil {
		return Payment{}, err
	}

	svc.sendReceipt(p, st)
	return p, nil
}

func (svc *service) GetByID(id string) (Payment, error) {
	return svc.repo.GetPaymentByID(context.Background(), id)
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Payment, error) {
	return svc.repo.QueryPayments(context.Background(), filter, ordering)
}

func (svc *service) QueryForStudent(studentID string) ([]Payment, error) {
	return svc.repo.QueryPayments(context.Background(), &QueryFilter{StudentID: studentID}, nil)
}

func (svc *service) Update(id string, up UpdatePayment) (Payment, error) {
	orig, err := svc.repo.GetPaymentByID(context.Background(), id)
	if err != nil {
		return Payment{}, err
	}

	if up.DevelopmentFee != nil {
		orig.DevelopmentFee = *up.DevelopmentFee
	}
	if up.BusFee != nil {
		orig.BusFee = *up.BusFee
	}
	if up.SpecialFee != nil {
		orig.SpecialFee = *up.SpecialFee
	}
	if up.SpecialFeeType != "" {
		orig.SpecialFeeType = up.SpecialFeeType
	}
	orig.TotalAmount = orig.DevelopmentFee + orig.BusFee + orig.SpecialFee
	orig.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdatePayment(context.Background(), orig)
}

func (svc *service) Delete(ids ...string) error {
	_, err := svc.repo.DeletePaymentsByID(context.Background(), ids)
	return err
}

func (svc *service) sendReceipt(p Payment, st student.Student) {
	if st.Mobile == "" || svc.smsSvc == nil {
		return
	}
	svc.smsSvc.SendMessages(&core.SMSMessage{
		To: st.Mobile,
		Body: fmt.Sprintf(
			"%s: received Rs %d for %s (%s). Dev %d, Bus %d, Special %d.",
			svc.conf.AppName, p.TotalAmount, p.StudentName, p.ClassKey(),
			p.DevelopmentFee, p.BusFee, p.SpecialFee,
		),
	})
}
