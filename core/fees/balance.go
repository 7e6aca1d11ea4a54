package fees

import (
	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

// Balance returns the outstanding amount for a category, clamped at zero.
// Overpayment is not tracked as credit.
func Balance(required, paid int) int {
	if bal := required - paid; bal > 0 {
		return bal
	}
	return 0
}

type (
	DevelopmentBalance struct {
		Total     int `json:"total"`
		Paid      int `json:"paid"`
		Remaining int `json:"remaining"`
	}

	BusBalance struct {
		Original  int `json:"original"`
		Discount  int `json:"discount"`
		Total     int `json:"total"` // Original - Discount, floored at 0
		Paid      int `json:"paid"`
		Remaining int `json:"remaining"`
	}

	SpecialBalance struct {
		Paid int `json:"paid"`
	}

	GrandTotal struct {
		Required  int `json:"required"`
		Paid      int `json:"paid"`
		Remaining int `json:"remaining"`
	}

	// StudentBalance is the full per-student balance record. Special fees
	// carry no configured requirement: they are purely additive collections,
	// never owed, so they contribute to Paid but not to Required/Remaining.
	StudentBalance struct {
		DevelopmentFee DevelopmentBalance `json:"development_fee"`
		BusFee         BusBalance         `json:"bus_fee"`
		SpecialFee     SpecialBalance     `json:"special_fee"`
		GrandTotal     GrandTotal         `json:"grand_total"`
	}
)

// ComputeStudentBalance combines the resolved requirement and the student's
// payment history into the balance record. Total over its inputs: missing
// configuration and empty histories yield zeros, never errors.
func ComputeStudentBalance(st student.Student, cfg Config, payments []payment.Payment) StudentBalance {
	req := ResolveRequired(st, cfg)
	paid := Aggregate(payments)

	originalBus := cfg.BusStops[st.BusStop]
	devRemaining := Balance(req.DevelopmentFee, paid.DevelopmentFee)
	busRemaining := Balance(req.BusFee, paid.BusFee)

	return StudentBalance{
		DevelopmentFee: DevelopmentBalance{
			Total:     req.DevelopmentFee,
			Paid:      paid.DevelopmentFee,
			Remaining: devRemaining,
		},
		BusFee: BusBalance{
			Original:  originalBus,
			Discount:  st.BusFeeDiscount,
			Total:     req.BusFee,
			Paid:      paid.BusFee,
			Remaining: busRemaining,
		},
		SpecialFee: SpecialBalance{Paid: paid.SpecialFee},
		GrandTotal: GrandTotal{
			Required:  req.DevelopmentFee + req.BusFee,
			Paid:      paid.Total,
			Remaining: devRemaining + busRemaining,
		},
	}
}
