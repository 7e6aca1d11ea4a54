package report

import (
	"fmt"
	"sort"

	"github.com/vipinkoroth/sarvodaya/core/collection"
	"github.com/vipinkoroth/sarvodaya/core/fees"
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

// Rollups are computed per student via the shared balance calculator and then
// summed into groups. Summing aggregate payments directly would lose the
// per-student bus fee discounts, so the two are not equivalent.

type (
	// GroupSummary is one rollup row: a group of students with their summed
	// development and bus balances.
	GroupSummary struct {
		Key                  string `json:"key"`
		Students             int    `json:"students"`
		DevelopmentTotal     int    `json:"development_total"`
		DevelopmentPaid      int    `json:"development_paid"`
		DevelopmentRemaining int    `json:"development_remaining"`
		BusTotal             int    `json:"bus_total"`
		BusPaid              int    `json:"bus_paid"`
		BusRemaining         int    `json:"bus_remaining"`
	}

	// BalanceRow is one student's yearly position in the school-wide dues
	// report.
	BalanceRow struct {
		AdmissionNo          string `json:"admission_no"`
		Name                 string `json:"name"`
		Class                string `json:"class"` // "{class}-{division}"
		BusStop              string `json:"bus_stop,omitempty"`
		DevelopmentTotal     int    `json:"development_total"`
		DevelopmentPaid      int    `json:"development_paid"`
		DevelopmentRemaining int    `json:"development_remaining"`
		BusTotal             int    `json:"bus_total"`
		BusPaid              int    `json:"bus_paid"`
		BusRemaining         int    `json:"bus_remaining"`
		SpecialPaid          int    `json:"special_paid"`
		TotalRemaining       int    `json:"total_remaining"`
	}

	// MonthSummary sums payment amounts by calendar month of the payment date.
	MonthSummary struct {
		Month          string `json:"month"` // "YYYY-MM"
		Payments       int    `json:"payments"`
		DevelopmentFee int    `json:"development_fee"`
		BusFee         int    `json:"bus_fee"`
		SpecialFee     int    `json:"special_fee"`
		Total          int    `json:"total"`
	}
)

// paymentsByStudent indexes payments on their student reference. Payments
// whose student was deleted keep only the denormalized snapshot and are
// excluded from balance rollups; they still count in the monthly summary.
func paymentsByStudent(payments []payment.Payment) map[string][]payment.Payment {
	byStudent := make(map[string][]payment.Payment)
	for _, p := range payments {
		if p.StudentID == "" {
			continue
		}
		byStudent[p.StudentID] = append(byStudent[p.StudentID], p)
	}
	return byStudent
}

func rollup(students []student.Student, payments []payment.Payment, cfg fees.Config, keyFn func(student.Student) (string, bool)) []GroupSummary {
	byStudent := paymentsByStudent(payments)

	groups := make(map[string]*GroupSummary)
	for _, st := range students {
		key, ok := keyFn(st)
		if !ok {
			continue
		}
		grp, ok := groups[key]
		if !ok {
			grp = &GroupSummary{Key: key}
			groups[key] = grp
		}
		bal := fees.ComputeStudentBalance(st, cfg, byStudent[st.ID])
		grp.Students++
		grp.DevelopmentTotal += bal.DevelopmentFee.Total
		grp.DevelopmentPaid += bal.DevelopmentFee.Paid
		grp.DevelopmentRemaining += bal.DevelopmentFee.Remaining
		grp.BusTotal += bal.BusFee.Total
		grp.BusPaid += bal.BusFee.Paid
		grp.BusRemaining += bal.BusFee.Remaining
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]GroupSummary, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, *groups[k])
	}
	return rows
}

// RollupByClass groups students by "{class}-{division}".
func RollupByClass(students []student.Student, payments []payment.Payment, cfg fees.Config) []GroupSummary {
	return rollup(students, payments, cfg, func(st student.Student) (string, bool) {
		return st.ClassKey(), true
	})
}

// RollupByStop groups bus riders by stop name. Students without a stop are
// excluded.
func RollupByStop(students []student.Student, payments []payment.Payment, cfg fees.Config) []GroupSummary {
	return rollup(students, payments, cfg, func(st student.Student) (string, bool) {
		return st.BusStop, st.BusStop != ""
	})
}

// RollupBySection groups students into the four class-range sections.
// Classes outside 1-12 belong to no section and are excluded.
func RollupBySection(students []student.Student, payments []payment.Payment, cfg fees.Config) []GroupSummary {
	rows := rollup(students, payments, cfg, func(st student.Student) (string, bool) {
		sec, ok := collection.SectionForClass(st.Class)
		return string(sec), ok
	})
	// fixed lp, up, hs, hss order instead of lexical
	order := make(map[string]int, len(collection.Sections))
	for i, sec := range collection.Sections {
		order[string(sec)] = i
	}
	sort.SliceStable(rows, func(i, j int) bool { return order[rows[i].Key] < order[rows[j].Key] })
	return rows
}

// BalanceRows computes every student's balance, ordered by class key then
// admission number.
func BalanceRows(students []student.Student, payments []payment.Payment, cfg fees.Config) []BalanceRow {
	byStudent := paymentsByStudent(payments)

	rows := make([]BalanceRow, 0, len(students))
	for _, st := range students {
		bal := fees.ComputeStudentBalance(st, cfg, byStudent[st.ID])
		rows = append(rows, BalanceRow{
			AdmissionNo:          st.AdmissionNo,
			Name:                 st.Name,
			Class:                st.ClassKey(),
			BusStop:              st.BusStop,
			DevelopmentTotal:     bal.DevelopmentFee.Total,
			DevelopmentPaid:      bal.DevelopmentFee.Paid,
			DevelopmentRemaining: bal.DevelopmentFee.Remaining,
			BusTotal:             bal.BusFee.Total,
			BusPaid:              bal.BusFee.Paid,
			BusRemaining:         bal.BusFee.Remaining,
			SpecialPaid:          bal.SpecialFee.Paid,
			TotalRemaining:       bal.GrandTotal.Remaining,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Class != rows[j].Class {
			return rows[i].Class < rows[j].Class
		}
		return rows[i].AdmissionNo < rows[j].AdmissionNo
	})
	return rows
}

// RollupByMonth sums payments by the calendar month of their payment date,
// most recent month first. Month keys are zero-padded so string order matches
// chronological order.
func RollupByMonth(payments []payment.Payment) []MonthSummary {
	groups := make(map[string]*MonthSummary)
	for _, p := range payments {
		key := fmt.Sprintf("%d-%02d", p.PaymentDate.Year(), int(p.PaymentDate.Month()))
		grp, ok := groups[key]
		if !ok {
			grp = &MonthSummary{Month: key}
			groups[key] = grp
		}
		grp.Payments++
		grp.DevelopmentFee += p.DevelopmentFee
		grp.BusFee += p.BusFee
		grp.SpecialFee += p.SpecialFee
		grp.Total += p.TotalAmount
	}

	rows := make([]MonthSummary, 0, len(groups))
	for _, grp := range groups {
		rows = append(rows, *grp)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month > rows[j].Month })
	return rows
}
