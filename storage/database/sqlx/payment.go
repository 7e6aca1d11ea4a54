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
	"github.com/vipinkoroth/sarvodaya/core/payment"
)

type paymentRow struct {
	ID             string      `db:"id"`
	StudentID      null.String `db:"student_id"`
	StudentName    string      `db:"student_name"`
	AdmissionNo    null.String `db:"admission_no"`
	Class          string      `db:"class"`
	Division       string      `db:"division"`
	DevelopmentFee int         `db:"development_fee"`
	BusFee         int         `db:"bus_fee"`
	SpecialFee     int         `db:"special_fee"`
	SpecialFeeType null.String `db:"special_fee_type"`
	TotalAmount    int         `db:"total_amount"`
	PaymentDate    null.Time   `db:"payment_date"`
	AddedBy        null.String `db:"added_by"`
	UpdatedAt      null.Time   `db:"updated_at"`
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo paymentRepository) pack(p payment.Payment) paymentRow {
	return paymentRow{
		ID:             p.ID,
		StudentID:      null.NewString(p.StudentID, p.StudentID != ""),
		StudentName:    p.StudentName,
		AdmissionNo:    null.NewString(p.AdmissionNo, p.AdmissionNo != ""),
		Class:          p.Class,
		Division:       p.Division,
		DevelopmentFee: p.DevelopmentFee,
		BusFee:         p.BusFee,
		SpecialFee:     p.SpecialFee,
		SpecialFeeType: null.NewString(p.SpecialFeeType, p.SpecialFeeType != ""),
		TotalAmount:    p.TotalAmount,
		PaymentDate:    null.NewTime(p.PaymentDate.UTC(), !p.PaymentDate.IsZero()),
		AddedBy:        null.NewString(p.AddedBy, p.AddedBy != ""),
		UpdatedAt:      null.NewTime(p.UpdatedAt.UTC(), !p.UpdatedAt.IsZero()),
	}
}

func (repo paymentRepository) unpack(row paymentRow) payment.Payment {
	return payment.Payment{
		ID:             row.ID,
		StudentID:      row.StudentID.String,
		StudentName:    row.StudentName,
		AdmissionNo:    row.AdmissionNo.String,
		Class:          row.Class,
		Division:       row.Division,
		DevelopmentFee: row.DevelopmentFee,
		BusFee:         row.BusFee,
		SpecialFee:     row.SpecialFee,
		SpecialFeeType: row.SpecialFeeType.String,
		TotalAmount:    row.TotalAmount,
		PaymentDate:    row.PaymentDate.Time,
		AddedBy:        row.AddedBy.String,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to payment.ErrNotFound
func (repo paymentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return payment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	p.ID = uuid.New().String()
	row := repo.pack(p)
	query := `
INSERT INTO payment (id, student_id, student_name, admission_no, class, division, development_fee, bus_fee,
                     special_fee, special_fee_type, total_amount, payment_date, added_by, updated_at)
VALUES (:id, :student_id, :student_name, :admission_no, :class, :division, :development_fee, :bus_fee,
        :special_fee, :special_fee_type, :total_amount, :payment_date, :added_by, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payment.Payment{}, payment.ErrNotFound
	}
	var row paymentRow
	if err := repo.db.GetContext(ctx, &row, repo.db.Rebind("SELECT * FROM payment WHERE id = ?"), id); err != nil {
		return payment.Payment{}, repo.trapNoRowsErr(err, "finding payment by ID")
	}
	return repo.unpack(row), nil
}

func (repo paymentRepository) QueryPayments(ctx context.Context, filter *payment.QueryFilter, ordering []core.DBOrdering) ([]payment.Payment, error) {
	query := "SELECT * FROM payment"
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.StudentID != "" {
			conds = append(conds, "student_id = ?")
			args = append(args, filter.StudentID)
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
			conds = append(conds, "student_id IN (SELECT id::text FROM student WHERE bus_stop = ?)")
			args = append(args, filter.BusStop)
		}
		if !filter.DateFrom.IsZero() {
			conds = append(conds, "payment_date >= ?")
			args = append(args, filter.DateFrom.UTC())
		}
		if !filter.DateTo.IsZero() {
			conds = append(conds, "payment_date <= ?")
			args = append(args, filter.DateTo.UTC())
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderingClause(ordering, "payment_date DESC")

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, repo.unpack(row))
	}
	return payments, nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	row := repo.pack(p)
	query := `
UPDATE payment
SET development_fee = :development_fee, bus_fee = :bus_fee, special_fee = :special_fee,
    special_fee_type = :special_fee_type, total_amount = :total_amount, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return repo.GetPaymentByID(ctx, p.ID)
}

func (repo paymentRepository) DeletePaymentsByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM payment WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting payments")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting payments")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting payments")
	}
	return int(cnt), nil
}
