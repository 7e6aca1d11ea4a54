package collection

import (
	"testing"

	"github.com/vipinkoroth/sarvodaya/core/payment"
)

func TestSectionForClass(t *testing.T) {
	tests := []struct {
		class  string
		want   Section
		wantOK bool
	}{
		{"1", SectionLP, true},
		{"4", SectionLP, true},
		{"5", SectionUP, true},
		{"7", SectionUP, true},
		{"8", SectionHS, true},
		{"10", SectionHS, true},
		{"11", SectionHSS, true},
		{"12", SectionHSS, true},
		{"0", "", false},
		{"13", "", false},
		{"nursery", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got, ok := SectionForClass(tt.class)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("SectionForClass(%q) = (%q, %v), want (%q, %v)", tt.class, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReconcileTeachers(t *testing.T) {
	payments := []payment.Payment{
		{Class: "5", Division: "A", TotalAmount: 3000},
		{Class: "5", Division: "A", TotalAmount: 1500},
		{Class: "6", Division: "B", TotalAmount: 2000},
		{Class: "9", Division: "A", TotalAmount: 9999},  // hs, out of section
		{Class: "kg", Division: "A", TotalAmount: 4444}, // no section
	}
	entries := []TeacherEntry{
		{FromTeacher: "5-A", Section: SectionUP, Category: CategoryDevelopmentFund, Amount: 4000},
		{FromTeacher: "7-C", Section: SectionUP, Category: CategoryBusFee, Amount: 700},
		{FromTeacher: "9-A", Section: SectionHS, Amount: 123}, // other section, ignored
	}

	rows := ReconcileTeachers(SectionUP, payments, entries)

	want := []TeacherLedgerRow{
		{ClassKey: "5-A", Expected: 4500, Recorded: 4000, Balance: 500},
		{ClassKey: "6-B", Expected: 2000, Recorded: 0, Balance: 2000},
		{ClassKey: "7-C", Expected: 0, Recorded: 700, Balance: -700},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(want), rows)
	}
	for i, row := range rows {
		if row != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, row, want[i])
		}
	}
}

func TestReconcileSections(t *testing.T) {
	teacherEntries := []TeacherEntry{
		{FromTeacher: "2-A", Section: SectionLP, Amount: 1000},
		{FromTeacher: "3-B", Section: SectionLP, Amount: 500},
		{FromTeacher: "9-A", Section: SectionHS, Amount: 2500},
	}
	sectionEntries := []SectionEntry{
		{FromSection: SectionLP, Amount: 1500},
		{FromSection: SectionHS, Amount: 3000},
	}

	rows := ReconcileSections(teacherEntries, sectionEntries)

	want := []SectionLedgerRow{
		{Section: SectionLP, Expected: 1500, Recorded: 1500, Balance: 0},
		{Section: SectionUP, Expected: 0, Recorded: 0, Balance: 0},
		{Section: SectionHS, Expected: 2500, Recorded: 3000, Balance: -500},
		{Section: SectionHSS, Expected: 0, Recorded: 0, Balance: 0},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, row := range rows {
		if row != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, row, want[i])
		}
	}
}

func TestReconcileEmpty(t *testing.T) {
	if rows := ReconcileTeachers(SectionLP, nil, nil); len(rows) != 0 {
		t.Errorf("expected no rows, got %+v", rows)
	}
	rows := ReconcileSections(nil, nil)
	if len(rows) != len(Sections) {
		t.Fatalf("expected one row per section, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Expected != 0 || row.Recorded != 0 || row.Balance != 0 {
			t.Errorf("expected zero row, got %+v", row)
		}
	}
}
