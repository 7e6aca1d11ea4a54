package collection

import (
	"sort"

	"github.com/vipinkoroth/sarvodaya/core/payment"
)

// Reconciliation is a display-time diff of two independent ledgers, never an
// enforced invariant. Balance keeps its sign: positive means the source still
// owes money, negative means more was handed over than expected.

// TeacherLedgerRow compares what a class's student payments add up to against
// what its teacher has recorded as handed to the section head.
type TeacherLedgerRow struct {
	ClassKey string `json:"class_key"` // "{class}-{division}"
	Expected int    `json:"expected"`  // sum of the class's student payments, all categories
	Recorded int    `json:"recorded"`  // sum of the teacher's collection entries
	Balance  int    `json:"balance"`   // Expected - Recorded, signed
}

// SectionLedgerRow compares a section's recorded teacher receipts against
// what the section head has recorded as forwarded to the clerk.
type SectionLedgerRow struct {
	Section  Section `json:"section"`
	Expected int     `json:"expected"` // sum of teacher->section entries for the section
	Recorded int     `json:"recorded"` // sum of section->clerk entries
	Balance  int     `json:"balance"`  // Expected - Recorded, signed
}

// ReconcileTeachers builds the teacher->section ledger for one section.
// Expected amounts come from payments of classes belonging to the section;
// recorded amounts from the section's teacher entries. A class appears when
// either side has activity.
func ReconcileTeachers(sec Section, payments []payment.Payment, entries []TeacherEntry) []TeacherLedgerRow {
	expected := make(map[string]int)
	for _, p := range payments {
		pSec, ok := SectionForClass(p.Class)
		if !ok || pSec != sec {
			continue
		}
		expected[p.ClassKey()] += p.TotalAmount
	}

	recorded := make(map[string]int)
	for _, e := range entries {
		if e.Section != sec {
			continue
		}
		recorded[e.FromTeacher] += e.Amount
	}

	keys := make([]string, 0, len(expected)+len(recorded))
	for k := range expected {
		keys = append(keys, k)
	}
	for k := range recorded {
		if _, ok := expected[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	rows := make([]TeacherLedgerRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, TeacherLedgerRow{
			ClassKey: k,
			Expected: expected[k],
			Recorded: recorded[k],
			Balance:  expected[k] - recorded[k],
		})
	}
	return rows
}

// ReconcileSections builds the section->clerk ledger across all four
// sections. Expected amounts come from the teacher->section entries each
// section head has recorded as received.
func ReconcileSections(teacherEntries []TeacherEntry, sectionEntries []SectionEntry) []SectionLedgerRow {
	expected := make(map[Section]int)
	for _, e := range teacherEntries {
		expected[e.Section] += e.Amount
	}

	recorded := make(map[Section]int)
	for _, e := range sectionEntries {
		recorded[e.FromSection] += e.Amount
	}

	rows := make([]SectionLedgerRow, 0, len(Sections))
	for _, sec := range Sections {
		rows = append(rows, SectionLedgerRow{
			Section:  sec,
			Expected: expected[sec],
			Recorded: recorded[sec],
			Balance:  expected[sec] - recorded[sec],
		})
	}
	return rows
}
