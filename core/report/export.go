package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Table is a flattened summary ready for export: a header row plus one row
// per group. An empty summary still exports its header.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

var groupHeader = []string{
	"key", "students",
	"development_total", "development_paid", "development_remaining",
	"bus_total", "bus_paid", "bus_remaining",
}

// GroupTable flattens group rollup rows. keyLabel replaces the generic "key"
// column name, e.g. "class" or "bus_stop".
func GroupTable(name, keyLabel string, rows []GroupSummary) Table {
	header := append([]string(nil), groupHeader...)
	header[0] = keyLabel
	t := Table{Name: name, Header: header, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Key, strconv.Itoa(r.Students),
			strconv.Itoa(r.DevelopmentTotal), strconv.Itoa(r.DevelopmentPaid), strconv.Itoa(r.DevelopmentRemaining),
			strconv.Itoa(r.BusTotal), strconv.Itoa(r.BusPaid), strconv.Itoa(r.BusRemaining),
		})
	}
	return t
}

// BalanceTable flattens the per-student dues report.
func BalanceTable(rows []BalanceRow) Table {
	t := Table{
		Name: "student-dues",
		Header: []string{
			"admission_no", "name", "class", "bus_stop",
			"development_total", "development_paid", "development_remaining",
			"bus_total", "bus_paid", "bus_remaining",
			"special_paid", "total_remaining",
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.AdmissionNo, r.Name, r.Class, r.BusStop,
			strconv.Itoa(r.DevelopmentTotal), strconv.Itoa(r.DevelopmentPaid), strconv.Itoa(r.DevelopmentRemaining),
			strconv.Itoa(r.BusTotal), strconv.Itoa(r.BusPaid), strconv.Itoa(r.BusRemaining),
			strconv.Itoa(r.SpecialPaid), strconv.Itoa(r.TotalRemaining),
		})
	}
	return t
}

// MonthTable flattens the monthly collection summary.
func MonthTable(rows []MonthSummary) Table {
	t := Table{
		Name:   "monthly-collection",
		Header: []string{"month", "payments", "development_fee", "bus_fee", "special_fee", "total"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Month, strconv.Itoa(r.Payments),
			strconv.Itoa(r.DevelopmentFee), strconv.Itoa(r.BusFee), strconv.Itoa(r.SpecialFee), strconv.Itoa(r.Total),
		})
	}
	return t
}

// WriteCSV renders the table as RFC 4180 CSV. Fields containing commas or
// quotes are quoted by the writer, not joined naively.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

// WriteXLSX renders the table as a single-sheet spreadsheet.
func (t Table) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	sheet := t.Name
	if sheet == "" {
		sheet = "Report"
	}
	index, err := f.NewSheet(sheet)
	if err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	for rowIdx, row := range t.Rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			// numeric cells stay numeric in the sheet
			if n, convErr := strconv.Atoi(val); convErr == nil {
				_ = f.SetCellValue(sheet, cell, n)
			} else {
				_ = f.SetCellValue(sheet, cell, val)
			}
		}
	}
	return errors.Wrap(f.Write(w), "writing xlsx")
}
