package collection

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("collection entry not found")
	ErrSectionForbidden = errors.New("section heads may only record entries for their own section")
)

type (
	Repository interface {
		CreateTeacherEntry(ctx context.Context, e TeacherEntry) (TeacherEntry, error)
		GetTeacherEntryByID(ctx context.Context, id string) (TeacherEntry, error)
		// QueryTeacherEntries applies AND operation on available QueryFilter fields.
		// Results are ordered by Date descending unless overridden.
		QueryTeacherEntries(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]TeacherEntry, error)
		UpdateTeacherEntry(ctx context.Context, e TeacherEntry) (TeacherEntry, error)
		DeleteTeacherEntriesByID(ctx context.Context, ids []string) (int, error)

		CreateSectionEntry(ctx context.Context, e SectionEntry) (SectionEntry, error)
		GetSectionEntryByID(ctx context.Context, id string) (SectionEntry, error)
		QuerySectionEntries(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]SectionEntry, error)
		UpdateSectionEntry(ctx context.Context, e SectionEntry) (SectionEntry, error)
		DeleteSectionEntriesByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		CreateTeacherEntry(ne NewTeacherEntry, actor user.User) (TeacherEntry, error)
		GetTeacherEntryByID(id string) (TeacherEntry, error)
		QueryTeacherEntries(filter *QueryFilter, actor user.User) ([]TeacherEntry, error)
		UpdateTeacherEntry(id string, ue UpdateEntry, actor user.User) (TeacherEntry, error)
		DeleteTeacherEntries(actor user.User, ids ...string) error

		CreateSectionEntry(ne NewSectionEntry, actor user.User) (SectionEntry, error)
		GetSectionEntryByID(id string) (SectionEntry, error)
		QuerySectionEntries(filter *QueryFilter) ([]SectionEntry, error)
		UpdateSectionEntry(id string, ue UpdateEntry) (SectionEntry, error)
		DeleteSectionEntries(ids ...string) error

		TeacherLedger(sec Section) ([]TeacherLedgerRow, error)
		SectionLedger() ([]SectionLedgerRow, error)
	}

	service struct {
		repo       Repository
		paymentSvc payment.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, paymentSvc payment.Service) Service {
	return &service{
		repo:       repo,
		paymentSvc: paymentSvc,
	}
}

// checkSectionScope enforces who may touch a teacher->section entry: admins,
// clerks and unscoped section heads see all sections; a scoped section head
// only their own.
func checkSectionScope(actor user.User, sec Section) error {
	if actor.IsAdmin() || actor.IsClerk() {
		return nil
	}
	if scope := actor.SectionScope(); scope != "" && scope != string(sec) {
		return ErrSectionForbidden
	}
	return nil
}

func (svc *service) CreateTeacherEntry(ne NewTeacherEntry, actor user.User) (TeacherEntry, error) {
	if err := checkSectionScope(actor, ne.Section); err != nil {
		return TeacherEntry{}, err
	}
	now := time.Now().UTC()
	e := TeacherEntry{
		FromTeacher: ne.FromTeacher,
		Section:     ne.Section,
		SectionHead: ne.SectionHead,
		Category:    ne.Category,
		Amount:      ne.Amount,
		Date:        entryDate(ne.Date, now),
		Remarks:     ne.Remarks,
		RecordedBy:  actor.Username,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTeacherEntry(context.Background(), e)
}

func (svc *service) GetTeacherEntryByID(id string) (TeacherEntry, error) {
	return svc.repo.GetTeacherEntryByID(context.Background(), id)
}

func (svc *service) QueryTeacherEntries(filter *QueryFilter, actor user.User) ([]TeacherEntry, error) {
	if scope := actor.SectionScope(); scope != "" && !actor.IsAdmin() && !actor.IsClerk() {
		if filter == nil {
			filter = new(QueryFilter)
		}
		filter.Section = Section(scope)
	}
	return svc.repo.QueryTeacherEntries(context.Background(), filter, nil)
}

func (svc *service) UpdateTeacherEntry(id string, ue UpdateEntry, actor user.User) (TeacherEntry, error) {
	ctx := context.Background()
	e, err := svc.repo.GetTeacherEntryByID(ctx, id)
	if err != nil {
		return TeacherEntry{}, err
	}
	if err = checkSectionScope(actor, e.Section); err != nil {
		return TeacherEntry{}, err
	}
	applyUpdate(&e.Category, &e.Amount, &e.Date, &e.Remarks, ue)
	e.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacherEntry(ctx, e)
}

func (svc *service) DeleteTeacherEntries(actor user.User, ids ...string) error {
	ctx := context.Background()
	for _, id := range ids {
		e, err := svc.repo.GetTeacherEntryByID(ctx, id)
		if err != nil {
			return err
		}
		if err = checkSectionScope(actor, e.Section); err != nil {
			return err
		}
	}
	_, err := svc.repo.DeleteTeacherEntriesByID(ctx, ids)
	return err
}

func (svc *service) CreateSectionEntry(ne NewSectionEntry, actor user.User) (SectionEntry, error) {
	// scoped section heads record teacher entries only; the section->clerk
	// ledger is written by admins, clerks and unscoped section heads.
	if actor.SectionScope() != "" {
		return SectionEntry{}, ErrSectionForbidden
	}
	now := time.Now().UTC()
	e := SectionEntry{
		FromSection: ne.FromSection,
		Category:    ne.Category,
		Amount:      ne.Amount,
		Date:        entryDate(ne.Date, now),
		Remarks:     ne.Remarks,
		RecordedBy:  actor.Username,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSectionEntry(context.Background(), e)
}

func (svc *service) GetSectionEntryByID(id string) (SectionEntry, error) {
	return svc.repo.GetSectionEntryByID(context.Background(), id)
}

func (svc *service) QuerySectionEntries(filter *QueryFilter) ([]SectionEntry, error) {
	return svc.repo.QuerySectionEntries(context.Background(), filter, nil)
}

func (svc *service) UpdateSectionEntry(id string, ue UpdateEntry) (SectionEntry, error) {
	ctx := context.Background()
	e, err := svc.repo.GetSectionEntryByID(ctx, id)
	if err != nil {
		return SectionEntry{}, err
	}
	applyUpdate(&e.Category, &e.Amount, &e.Date, &e.Remarks, ue)
	e.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSectionEntry(ctx, e)
}

func (svc *service) DeleteSectionEntries(ids ...string) error {
	_, err := svc.repo.DeleteSectionEntriesByID(context.Background(), ids)
	return err
}

// TeacherLedger reconciles one section's teacher entries against the student
// payments of the section's classes.
func (svc *service) TeacherLedger(sec Section) ([]TeacherLedgerRow, error) {
	payments, err := svc.paymentSvc.Query(nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "loading payments")
	}
	entries, err := svc.repo.QueryTeacherEntries(context.Background(), &QueryFilter{Section: sec}, nil)
	if err != nil {
		return nil, err
	}
	return ReconcileTeachers(sec, payments, entries), nil
}

// SectionLedger reconciles all section heads' forwarded amounts against what
// they recorded as received from teachers.
func (svc *service) SectionLedger() ([]SectionLedgerRow, error) {
	ctx := context.Background()
	teacherEntries, err := svc.repo.QueryTeacherEntries(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	sectionEntries, err := svc.repo.QuerySectionEntries(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return ReconcileSections(teacherEntries, sectionEntries), nil
}

func entryDate(given, fallback time.Time) time.Time {
	if given.IsZero() {
		return fallback
	}
	return given.UTC()
}

func applyUpdate(cat *Category, amount *int, date *time.Time, remarks *string, ue UpdateEntry) {
	if ue.Category != "" {
		*cat = ue.Category
	}
	if ue.Amount != nil {
		*amount = *ue.Amount
	}
	if !ue.Date.IsZero() {
		*date = ue.Date.UTC()
	}
	if ue.Remarks != "" {
		*remarks = ue.Remarks
	}
}
