package report

import (
	"testing"
	"time"

	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

var testConfig = fees.Config{
	DevelopmentFees: map[string]int{"5": 4000},
	BusStops: map[string]int{
		"Market Square": 900,
		"Temple Road":   600,
	},
}

func TestRollupByClass(t *testing.T) {
	// three students in the same class/division with differing bus stops
	// collapse into a single row
	students := []student.Student{
		{ID: "s1", Class: "5", Division: "A", BusStop: "Market Square"},
		{ID: "s2", Class: "5", Division: "A", BusStop: "Temple Road"},
		{ID: "s3", Class: "5", Division: "A", BusStop: "Temple Road", BusFeeDiscount: 100},
	}
	payments := []payment.Payment{
		{StudentID: "s1", Class: "5", Division: "A", DevelopmentFee: 1000, TotalAmount: 1000},
		{StudentID: "s2", Class: "5", Division: "A", DevelopmentFee: 4000, BusFee: 600, TotalAmount: 4600},
	}

	rows := RollupByClass(students, payments, testConfig)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
	}

	row := rows[0]
	if row.Key != "5-A" || row.Students != 3 {
		t.Errorf("row = %+v", row)
	}
	// development remaining: s1 3000 + s2 0 + s3 4000
	if row.DevelopmentTotal != 12000 || row.DevelopmentPaid != 5000 || row.DevelopmentRemaining != 7000 {
		t.Errorf("development sums = %+v", row)
	}
	// bus totals: s1 900 + s2 600 + s3 500
	if row.BusTotal != 2000 || row.BusPaid != 600 || row.BusRemaining != 1400 {
		t.Errorf("bus sums = %+v", row)
	}
}

func TestRollupByClassPartition(t *testing.T) {
	students := []student.Student{
		{ID: "s1", Class: "1", Division: "A"},
		{ID: "s2", Class: "1", Division: "B"},
		{ID: "s3", Class: "2", Division: "A"},
		{ID: "s4", Class: "2", Division: "A"},
		{ID: "s5", Class: "12", Division: "B"},
	}

	rows := RollupByClass(students, nil, testConfig)

	// flattening the groups must reproduce the student count exactly
	var count int
	for _, row := range rows {
		count += row.Students
	}
	if count != len(students) {
		t.Errorf("grouped student count = %d, want %d", count, len(students))
	}
}

func TestRollupConsistencyAcrossGroupings(t *testing.T) {
	students := []student.Student{
		{ID: "s1", Class: "5", Division: "A", BusStop: "Market Square"},
		{ID: "s2", Class: "9", Division: "C", BusStop: "Temple Road"},
	}
	payments := []payment.Payment{
		{StudentID: "s1", DevelopmentFee: 500, BusFee: 300, TotalAmount: 800},
		{StudentID: "s2", BusFee: 600, TotalAmount: 600},
	}

	byClass := RollupByClass(students, payments, testConfig)
	bySection := RollupBySection(students, payments, testConfig)

	sum := func(rows []GroupSummary) (dev, bus int) {
		for _, r := range rows {
			dev += r.DevelopmentRemaining
			bus += r.BusRemaining
		}
		return
	}
	classDev, classBus := sum(byClass)
	secDev, secBus := sum(bySection)
	if classDev != secDev || classBus != secBus {
		t.Errorf("groupings disagree: class (%d, %d) vs section (%d, %d)", classDev, classBus, secDev, secBus)
	}
}

func TestRollupByStop(t *testing.T) {
	students := []student.Student{
		{ID: "s1", Class: "5", Division: "A", BusStop: "Market Square"},
		{ID: "s2", Class: "6", Division: "B", BusStop: "Market Square"},
		{ID: "s3", Class: "7", Division: "C"}, // walker, excluded
	}

	rows := RollupByStop(students, nil, testConfig)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %+v", len(rows), rows)
	}
	if rows[0].Key != "Market Square" || rows[0].Students != 2 || rows[0].BusTotal != 1800 {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestRollupBySectionOrder(t *testing.T) {
	students := []student.Student{
		{ID: "s1", Class: "12", Division: "A"},
		{ID: "s2", Class: "1", Division: "A"},
		{ID: "s3", Class: "8", Division: "A"},
		{ID: "s4", Class: "kg", Division: "A"}, // outside 1-12, excluded
	}

	rows := RollupBySection(students, nil, testConfig)

	wantKeys := []string{"lp", "hs", "hss"}
	if len(rows) != len(wantKeys) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(wantKeys), rows)
	}
	for i, key := range wantKeys {
		if rows[i].Key != key {
			t.Errorf("row %d key = %q, want %q", i, rows[i].Key, key)
		}
	}
}

func TestBalanceRows(t *testing.T) {
	students := []student.Student{
		{ID: "s2", AdmissionNo: "A200", Name: "Binu George", Class: "9", Division: "C"},
		{ID: "s1", AdmissionNo: "A100", Name: "Anu Thomas", Class: "5", Division: "A", BusStop: "Market Square", BusFeeDiscount: 100},
	}
	payments := []payment.Payment{
		{StudentID: "s1", DevelopmentFee: 1000, BusFee: 300, SpecialFee: 250, TotalAmount: 1550},
	}

	rows := BalanceRows(students, payments, testConfig)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}

	// class key order, not input order
	if rows[0].AdmissionNo != "A100" || rows[1].AdmissionNo != "A200" {
		t.Errorf("row order = [%s, %s]", rows[0].AdmissionNo, rows[1].AdmissionNo)
	}

	anu := rows[0]
	if anu.Class != "5-A" || anu.BusStop != "Market Square" {
		t.Errorf("row = %+v", anu)
	}
	if anu.DevelopmentTotal != 4000 || anu.DevelopmentPaid != 1000 || anu.DevelopmentRemaining != 3000 {
		t.Errorf("development = %+v", anu)
	}
	if anu.BusTotal != 800 || anu.BusPaid != 300 || anu.BusRemaining != 500 {
		t.Errorf("bus = %+v", anu)
	}
	if anu.SpecialPaid != 250 || anu.TotalRemaining != 3500 {
		t.Errorf("totals = %+v", anu)
	}

	// class 9 has no configured fees and no payments
	binu := rows[1]
	if binu.DevelopmentTotal != 0 || binu.TotalRemaining != 0 {
		t.Errorf("unconfigured class row = %+v", binu)
	}
}

func TestRollupByMonth(t *testing.T) {
	date := func(y int, m time.Month) time.Time {
		return time.Date(y, m, 15, 10, 0, 0, 0, time.UTC)
	}
	payments := []payment.Payment{
		{DevelopmentFee: 1000, TotalAmount: 1000, PaymentDate: date(2026, time.January)},
		{BusFee: 300, TotalAmount: 300, PaymentDate: date(2026, time.January)},
		{SpecialFee: 250, TotalAmount: 250, PaymentDate: date(2025, time.November)},
		{DevelopmentFee: 500, TotalAmount: 500, PaymentDate: date(2025, time.September)},
	}

	rows := RollupByMonth(payments)

	wantMonths := []string{"2026-01", "2025-11", "2025-09"}
	if len(rows) != len(wantMonths) {
		t.Fatalf("got %d rows, want %d", len(rows), len(wantMonths))
	}
	for i, m := range wantMonths {
		if rows[i].Month != m {
			t.Errorf("row %d month = %q, want %q", i, rows[i].Month, m)
		}
	}

	jan := rows[0]
	if jan.Payments != 2 || jan.DevelopmentFee != 1000 || jan.BusFee != 300 || jan.Total != 1300 {
		t.Errorf("january row = %+v", jan)
	}
}

func TestRollupSkipsOrphanPayments(t *testing.T) {
	students := []student.Student{{ID: "s1", Class: "5", Division: "A"}}
	payments := []payment.Payment{
		// student deleted, only the snapshot remains
		{StudentID: "", Class: "5", Division: "A", DevelopmentFee: 9999, TotalAmount: 9999, PaymentDate: time.Now()},
	}

	rows := RollupByClass(students, payments, testConfig)
	if len(rows) != 1 || rows[0].DevelopmentPaid != 0 {
		t.Errorf("orphan payment leaked into balance rollup: %+v", rows)
	}

	// it still counts toward the monthly collection
	months := RollupByMonth(payments)
	if len(months) != 1 || months[0].Total != 9999 {
		t.Errorf("monthly rollup = %+v", months)
	}
}
