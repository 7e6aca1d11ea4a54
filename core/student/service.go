package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrAdmissionExists = errors.New("a student with this admission number already exists")
)

type (
	Repository interface {
		CheckAdmissionNoUniqueness(ctx context.Context, admissionNo string, excluded []Student) error
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByAdmissionNo(ctx context.Context, admissionNo string) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Student.Name or Student.AdmissionNo.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		CheckAdmissionNoUniqueness(admissionNo string, excluded ...Student) error
		Create(ns NewStudent) (Student, error)
		GetByID(id string) (Student, error)
		GetByAdmissionNo(admissionNo string) (Student, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		Update(id string, us UpdateStudent) (Student, error)
		Delete(ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckAdmissionNoUniqueness(admissionNo string, excluded ...Student) error {
	if err := svc.repo.CheckAdmissionNoUniqueness(context.Background(), admissionNo, excluded); err != nil {
		if errors.Cause(err) == ErrAdmissionExists {
			return core.NewValidationError(err, core.FieldError{Field: "admission_no", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	st := Student{
		AdmissionNo:    ns.AdmissionNo,
		Name:           ns.Name,
		Mobile:         ns.Mobile,
		Class:          ns.Class,
		Division:       ns.Division,
		BusStop:        ns.BusStop,
		BusNumber:      ns.BusNumber,
		BusTrip:        ns.BusTrip,
		BusFeeDiscount: ns.BusFeeDiscount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateStudent(context.Background(), st)
}

func (svc *service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudentByID(context.Background(), id)
}

func (svc *service) GetByAdmissionNo(admissionNo string) (Student, error) {
	return svc.repo.GetStudentByAdmissionNo(context.Background(), core.CleanString(admissionNo))
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(context.Background(), filter, ordering)
}

func (svc *service) Update(id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(context.Background(), id)
	if err != nil {
		return Student{}, err
	}

	orig.Name = us.Name
	orig.Mobile = us.Mobile
	orig.Class = us.Class
	orig.Division = us.Division
	orig.BusStop = us.BusStop
	orig.BusNumber = us.BusNumber
	orig.BusTrip = us.BusTrip
	if us.BusFeeDiscount != nil {
		orig.BusFeeDiscount = *us.BusFeeDiscount
	}
	orig.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateStudent(context.Background(), orig)
}

func (svc *service) Delete(ids ...string) error {
	_, err := svc.repo.DeleteStudentsByID(context.Background(), ids)
	return err
}
