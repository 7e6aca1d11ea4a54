package fees

import (
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

// RequiredFees is what a student owes for the year, after discounts.
type RequiredFees struct {
	DevelopmentFee int `json:"development_fee"`
	BusFee         int `json:"bus_fee"`
}

// ResolveRequired looks up the configured development and bus fees for a
// student and applies their bus-fee discount. Unconfigured classes or stops
// resolve to 0. The discounted bus fee never goes negative.
func ResolveRequired(st student.Student, cfg Config) RequiredFees {
	busFee := cfg.BusStops[st.BusStop] - st.BusFeeDiscount
	if busFee < 0 {
		busFee = 0
	}
	return RequiredFees{
		DevelopmentFee: cfg.DevelopmentFees[DevelopmentFeeKey(st.Class, st.Division)],
		BusFee:         busFee,
	}
}

// Totals is the category-wise sum of a set of payments.
type Totals struct {
	DevelopmentFee int `json:"development_fee"`
	BusFee         int `json:"bus_fee"`
	SpecialFee     int `json:"special_fee"`
	Total          int `json:"total"`
}

// Aggregate sums each fee category across the given payments.
// An empty input yields all zeros; order does not matter.
func Aggregate(payments []payment.Payment) Totals {
	var t Totals
	for _, p := range payments {
		t.DevelopmentFee += p.DevelopmentFee
		t.BusFee += p.BusFee
		t.SpecialFee += p.SpecialFee
		t.Total += p.TotalAmount
	}
	return t
}
