package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vipinkoroth/sarvodaya/core"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

type studentRow struct {
	ID             string      `db:"id"`
	AdmissionNo    string      `db:"admission_no"`
	Name           string      `db:"name"`
	Mobile         null.String `db:"mobile"`
	Class          string      `db:"class"`
	Division       string      `db:"division"`
	BusStop        null.String `db:"bus_stop"`
	BusNumber      null.String `db:"bus_number"`
	BusTrip        null.String `db:"bus_trip"`
	BusFeeDiscount int         `db:"bus_fee_discount"`
	CreatedAt      null.Time   `db:"created_at"`
	UpdatedAt      null.Time   `db:"updated_at"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) pack(st student.Student) studentRow {
	return studentRow{
		ID:             st.ID,
		AdmissionNo:    st.AdmissionNo,
		Name:           st.Name,
		Mobile:         null.NewString(st.Mobile, st.Mobile != ""),
		Class:          st.Class,
		Division:       st.Division,
		BusStop:        null.NewString(st.BusStop, st.BusStop != ""),
		BusNumber:      null.NewString(st.BusNumber, st.BusNumber != ""),
		BusTrip:        null.NewString(st.BusTrip, st.BusTrip != ""),
		BusFeeDiscount: st.BusFeeDiscount,
		CreatedAt:      null.NewTime(st.CreatedAt.UTC(), !st.CreatedAt.IsZero()),
		UpdatedAt:      null.NewTime(st.UpdatedAt.UTC(), !st.UpdatedAt.IsZero()),
	}
}

func (repo studentRepository) unpack(row studentRow) student.Student {
	return student.Student{
		ID:             row.ID,
		AdmissionNo:    row.AdmissionNo,
		Name:           row.Name,
		Mobile:         row.Mobile.String,
		Class:          row.Class,
		Division:       row.Division,
		BusStop:        row.BusStop.String,
		BusNumber:      row.BusNumber.String,
		BusTrip:        row.BusTrip.String,
		BusFeeDiscount: row.BusFeeDiscount,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CheckAdmissionNoUniqueness(ctx context.Context, admissionNo string, excluded []student.Student) error {
	query := "SELECT EXISTS (SELECT 1 FROM student WHERE admission_no = ?"
	args := []interface{}{admissionNo}

	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, st := range excluded {
			ids = append(ids, st.ID)
		}
		query += " AND id NOT IN (?)"
		var err error
		if query, args, err = sqlx.In(query+")", append(args, ids)...); err != nil {
			return errors.Wrap(err, "checking admission number uniqueness")
		}
	} else {
		query += ")"
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking admission number uniqueness")
	}
	if exists {
		return student.ErrAdmissionExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	row := repo.pack(st)
	query := `
INSERT INTO student (id, admission_no, name, mobile, class, division, bus_stop, bus_number, bus_trip, bus_fee_discount, created_at, updated_at)
VALUES (:id, :admission_no, :name, :mobile, :class, :division, :bus_stop, :bus_number, :bus_trip, :bus_fee_discount, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, repo.db.Rebind("SELECT * FROM student WHERE id = ?"), id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
	}
	return repo.unpack(row), nil
}

func (repo studentRepository) GetStudentByAdmissionNo(ctx context.Context, admissionNo string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, repo.db.Rebind("SELECT * FROM student WHERE admission_no = ?"), admissionNo); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by admission number")
	}
	return repo.unpack(row), nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	query := "SELECT * FROM student"
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			conds = append(conds, "(name ILIKE ? OR admission_no ILIKE ? OR mobile ILIKE ?)")
			val := "%" + filter.Search + "%"
			args = append(args, val, val, val)
		}
		if filter.Class != "" {
			conds = append(conds, "class = ?")
			args = append(args, filter.Class)
		}
		if filter.Division != "" {
			conds = append(conds, "division = ?")
			args = append(args, filter.Division)
		}
		if filter.BusStop != "" {
			conds = append(conds, "bus_stop = ?")
			args = append(args, filter.BusStop)
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderingClause(ordering, "class ASC, division ASC, name ASC")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unpack(row))
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	row := repo.pack(st)
	query := `
UPDATE student
SET admission_no = :admission_no, name = :name, mobile = :mobile, class = :class, division = :division,
    bus_stop = :bus_stop, bus_number = :bus_number, bus_trip = :bus_trip,
    bus_fee_discount = :bus_fee_discount, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, st.ID)
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM student WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	return int(cnt), nil
}
