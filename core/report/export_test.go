package report

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCSVEmpty(t *testing.T) {
	table := GroupTable("Class Summary", "class", nil)

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("empty export should be header-only, got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "class,students,development_total,development_paid,development_remaining,bus_total,bus_paid,bus_remaining" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestWriteCSVQuoting(t *testing.T) {
	rows := []GroupSummary{
		{Key: `Market Square, Gate "B"`, Students: 2, BusTotal: 1800},
	}
	table := GroupTable("Stop Summary", "bus_stop", rows)

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	// comma and quote containing fields must be escaped, not naively joined
	if !strings.Contains(buf.String(), `"Market Square, Gate ""B""",2`) {
		t.Errorf("unescaped field in output: %q", buf.String())
	}
}

func TestWriteCSVMonthTable(t *testing.T) {
	rows := []MonthSummary{
		{Month: "2026-01", Payments: 2, DevelopmentFee: 1000, BusFee: 300, Total: 1300},
	}

	var buf bytes.Buffer
	if err := MonthTable(rows).WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	want := "month,payments,development_fee,bus_fee,special_fee,total\n2026-01,2,1000,300,0,1300\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}

func TestWriteXLSX(t *testing.T) {
	rows := []GroupSummary{
		{Key: "5-A", Students: 3, DevelopmentTotal: 12000, DevelopmentPaid: 5000, DevelopmentRemaining: 7000},
	}
	table := GroupTable("Class Summary", "class", rows)

	var buf bytes.Buffer
	if err := table.WriteXLSX(&buf); err != nil {
		t.Fatal(err)
	}
	// xlsx container is a zip archive
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("output does not look like a spreadsheet: % x", buf.Bytes()[:4])
	}
}
