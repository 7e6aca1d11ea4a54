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
	"github.com/vipinkoroth/sarvodaya/core/collection"
)

type teacherEntryRow struct {
	ID          string      `db:"id"`
	FromTeacher string      `db:"from_teacher"`
	Section     string      `db:"section"`
	SectionHead null.String `db:"section_head"`
	Category    string      `db:"category"`
	Amount      int         `db:"amount"`
	Date        null.Time   `db:"date"`
	Remarks     null.String `db:"remarks"`
	RecordedBy  null.String `db:"recorded_by"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

type sectionEntryRow struct {
	ID          string      `db:"id"`
	FromSection string      `db:"from_section"`
	Category    string      `db:"category"`
	Amount      int         `db:"amount"`
	Date        null.Time   `db:"date"`
	Remarks     null.String `db:"remarks"`
	RecordedBy  null.String `db:"recorded_by"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

type collectionRepository struct {
	db *sqlx.DB
}

var _ collection.Repository = (*collectionRepository)(nil) // interface compliance check

func NewCollectionRepository(db *sqlx.DB) *collectionRepository {
	return &collectionRepository{db: db}
}

func (repo collectionRepository) packTeacher(e collection.TeacherEntry) teacherEntryRow {
	return teacherEntryRow{
		ID:          e.ID,
		FromTeacher: e.FromTeacher,
		Section:     string(e.Section),
		SectionHead: null.NewString(e.SectionHead, e.SectionHead != ""),
		Category:    string(e.Category),
		Amount:      e.Amount,
		Date:        null.NewTime(e.Date.UTC(), !e.Date.IsZero()),
		Remarks:     null.NewString(e.Remarks, e.Remarks != ""),
		RecordedBy:  null.NewString(e.RecordedBy, e.RecordedBy != ""),
		UpdatedAt:   null.NewTime(e.UpdatedAt.UTC(), !e.UpdatedAt.IsZero()),
	}
}

func (repo collectionRepository) unpackTeacher(row teacherEntryRow) collection.TeacherEntry {
	return collection.TeacherEntry{
		ID:          row.ID,
		FromTeacher: row.FromTeacher,
		Section:     collection.Section(row.Section),
		SectionHead: row.SectionHead.String,
		Category:    collection.Category(row.Category),
		Amount:      row.Amount,
		Date:        row.Date.Time,
		Remarks:     row.Remarks.String,
		RecordedBy:  row.RecordedBy.String,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func (repo collectionRepository) packSection(e collection.SectionEntry) sectionEntryRow {
	return sectionEntryRow{
		ID:          e.ID,
		FromSection: string(e.FromSection),
		Category:    string(e.Category),
		Amount:      e.Amount,
		Date:        null.NewTime(e.Date.UTC(), !e.Date.IsZero()),
		Remarks:     null.NewString(e.Remarks, e.Remarks != ""),
		RecordedBy:  null.NewString(e.RecordedBy, e.RecordedBy != ""),
		UpdatedAt:   null.NewTime(e.UpdatedAt.UTC(), !e.UpdatedAt.IsZero()),
	}
}

func (repo collectionRepository) unpackSection(row sectionEntryRow) collection.SectionEntry {
	return collection.SectionEntry{
		ID:          row.ID,
		FromSection: collection.Section(row.FromSection),
		Category:    collection.Category(row.Category),
		Amount:      row.Amount,
		Date:        row.Date.Time,
		Remarks:     row.Remarks.String,
		RecordedBy:  row.RecordedBy.String,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to collection.ErrNotFound
func (repo collectionRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return collection.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo collectionRepository) filterClauses(filter *collection.QueryFilter, teacherTable bool) ([]string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter == nil {
		return conds, args
	}
	if filter.Section != "" {
		col := "from_section"
		if teacherTable {
			col = "section"
		}
		conds = append(conds, col+" = ?")
		args = append(args, string(filter.Section))
	}
	if teacherTable && filter.Teacher != "" {
		conds = append(conds, "from_teacher = ?")
		args = append(args, filter.Teacher)
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(filter.Category))
	}
	if !filter.DateFrom.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, filter.DateFrom.UTC())
	}
	if !filter.DateTo.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, filter.DateTo.UTC())
	}
	return conds, args
}

func (repo collectionRepository) CreateTeacherEntry(ctx context.Context, e collection.TeacherEntry) (collection.TeacherEntry, error) {
	e.ID = uuid.New().String()
	row := repo.packTeacher(e)
	query := `
INSERT INTO teacher_collection_entry (id, from_teacher, section, section_head, category, amount, date, remarks, recorded_by, updated_at)
VALUES (:id, :from_teacher, :section, :section_head, :category, :amount, :date, :remarks, :recorded_by, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return collection.TeacherEntry{}, errors.Wrap(err, "inserting teacher collection entry")
	}
	return e, nil
}

func (repo collectionRepository) GetTeacherEntryByID(ctx context.Context, id string) (collection.TeacherEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return collection.TeacherEntry{}, collection.ErrNotFound
	}
	var row teacherEntryRow
	if err := repo.db.GetContext(ctx, &row, repo.db.Rebind("SELECT * FROM teacher_collection_entry WHERE id = ?"), id); err != nil {
		return collection.TeacherEntry{}, repo.trapNoRowsErr(err, "finding teacher collection entry")
	}
	return repo.unpackTeacher(row), nil
}

func (repo collectionRepository) QueryTeacherEntries(ctx context.Context, filter *collection.QueryFilter, ordering []core.DBOrdering) ([]collection.TeacherEntry, error) {
	query := "SELECT * FROM teacher_collection_entry"
	conds, args := repo.filterClauses(filter, true)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderingClause(ordering, "date DESC")

	var rows []teacherEntryRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying teacher collection entries")
	}
	entries := make([]collection.TeacherEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, repo.unpackTeacher(row))
	}
	return entries, nil
}

func (repo collectionRepository) UpdateTeacherEntry(ctx context.Context, e collection.TeacherEntry) (collection.TeacherEntry, error) {
	row := repo.packTeacher(e)
	query := `
UPDATE teacher_collection_entry
SET category = :category, amount = :amount, date = :date, remarks = :remarks, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return collection.TeacherEntry{}, errors.Wrap(err, "updating teacher collection entry")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return collection.TeacherEntry{}, collection.ErrNotFound
	}
	return repo.GetTeacherEntryByID(ctx, e.ID)
}

func (repo collectionRepository) DeleteTeacherEntriesByID(ctx context.Context, ids []string) (int, error) {
	return repo.deleteByID(ctx, "teacher_collection_entry", ids)
}

func (repo collectionRepository) CreateSectionEntry(ctx context.Context, e collection.SectionEntry) (collection.SectionEntry, error) {
	e.ID = uuid.New().String()
	row := repo.packSection(e)
	query := `
INSERT INTO section_collection_entry (id, from_section, category, amount, date, remarks, recorded_by, updated_at)
VALUES (:id, :from_section, :category, :amount, :date, :remarks, :recorded_by, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return collection.SectionEntry{}, errors.Wrap(err, "inserting section collection entry")
	}
	return e, nil
}

func (repo collectionRepository) GetSectionEntryByID(ctx context.Context, id string) (collection.SectionEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return collection.SectionEntry{}, collection.ErrNotFound
	}
	var row sectionEntryRow
	if err := repo.db.GetContext(ctx, &row, repo.db.Rebind("SELECT * FROM section_collection_entry WHERE id = ?"), id); err != nil {
		return collection.SectionEntry{}, repo.trapNoRowsErr(err, "finding section collection entry")
	}
	return repo.unpackSection(row), nil
}

func (repo collectionRepository) QuerySectionEntries(ctx context.Context, filter *collection.QueryFilter, ordering []core.DBOrdering) ([]collection.SectionEntry, error) {
	query := "SELECT * FROM section_collection_entry"
	conds, args := repo.filterClauses(filter, false)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderingClause(ordering, "date DESC")

	var rows []sectionEntryRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying section collection entries")
	}
	entries := make([]collection.SectionEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, repo.unpackSection(row))
	}
	return entries, nil
}

func (repo collectionRepository) UpdateSectionEntry(ctx context.Context, e collection.SectionEntry) (collection.SectionEntry, error) {
	row := repo.packSection(e)
	query := `
UPDATE section_collection_entry
SET category = :category, amount = :amount, date = :date, remarks = :remarks, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return collection.SectionEntry{}, errors.Wrap(err, "updating section collection entry")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return collection.SectionEntry{}, collection.ErrNotFound
	}
	return repo.GetSectionEntryByID(ctx, e.ID)
}

func (repo collectionRepository) DeleteSectionEntriesByID(ctx context.Context, ids []string) (int, error) {
	return repo.deleteByID(ctx, "section_collection_entry", ids)
}

func (repo collectionRepository) deleteByID(ctx context.Context, table string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting collection entries")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting collection entries")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting collection entries")
	}
	return int(cnt), nil
}
