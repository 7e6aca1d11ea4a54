package fees

import (
	"testing"
	"time"

	"github.com/vipinkoroth/sarvodaya/core/payment"
	"github.com/vipinkoroth/sarvodaya/core/student"
)

var testConfig = Config{
	DevelopmentFees: map[string]int{
		"5":    4000,
		"12-B": 13000,
	},
	BusStops: map[string]int{
		"Market Square": 900,
		"Temple Road":   600,
	},
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name           string
		required, paid int
		want           int
	}{
		{name: "unpaid", required: 1000, paid: 0, want: 1000},
		{name: "partial", required: 1000, paid: 400, want: 600},
		{name: "settled", required: 1000, paid: 1000, want: 0},
		{name: "overpaid clamps to zero", required: 1000, paid: 1500, want: 0},
		{name: "nothing required", required: 0, paid: 500, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Balance(tt.required, tt.paid); got != tt.want {
				t.Errorf("Balance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveRequired(t *testing.T) {
	tests := []struct {
		name    string
		st      student.Student
		wantDev int
		wantBus int
	}{
		{
			name:    "plain class key",
			st:      student.Student{Class: "5", Division: "A", BusStop: "Temple Road"},
			wantDev: 4000,
			wantBus: 600,
		},
		{
			name:    "class 12 keyed with division",
			st:      student.Student{Class: "12", Division: "B", BusStop: "Market Square"},
			wantDev: 13000,
			wantBus: 900,
		},
		{
			name:    "unconfigured class and stop resolve to zero",
			st:      student.Student{Class: "7", Division: "C", BusStop: "No Such Stop"},
			wantDev: 0,
			wantBus: 0,
		},
		{
			name:    "no bus rider",
			st:      student.Student{Class: "5", Division: "A"},
			wantDev: 4000,
			wantBus: 0,
		},
		{
			name:    "discount applied",
			st:      student.Student{Class: "5", Division: "A", BusStop: "Temple Road", BusFeeDiscount: 100},
			wantDev: 4000,
			wantBus: 500,
		},
		{
			name:    "discount larger than fee floors at zero",
			st:      student.Student{Class: "5", Division: "A", BusStop: "Temple Road", BusFeeDiscount: 1000},
			wantDev: 4000,
			wantBus: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRequired(tt.st, testConfig)
			if got.DevelopmentFee != tt.wantDev {
				t.Errorf("DevelopmentFee = %v, want %v", got.DevelopmentFee, tt.wantDev)
			}
			if got.BusFee != tt.wantBus {
				t.Errorf("BusFee = %v, want %v", got.BusFee, tt.wantBus)
			}
			if got.DevelopmentFee < 0 || got.BusFee < 0 {
				t.Error("required fees must never be negative")
			}
			if original := testConfig.BusStops[tt.st.BusStop]; got.BusFee > original {
				t.Errorf("discounted bus fee %v exceeds original %v", got.BusFee, original)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	payments := []payment.Payment{
		{DevelopmentFee: 5000, BusFee: 400, TotalAmount: 5400},
		{DevelopmentFee: 1000, SpecialFee: 250, SpecialFeeType: "Exam Fee", TotalAmount: 1250},
		{BusFee: 200, TotalAmount: 200},
	}

	got := Aggregate(payments)
	want := Totals{DevelopmentFee: 6000, BusFee: 600, SpecialFee: 250, Total: 6850}
	if got != want {
		t.Errorf("Aggregate() = %+v, want %+v", got, want)
	}

	// re-aggregation of the same list is idempotent
	if again := Aggregate(payments); again != got {
		t.Errorf("re-aggregation differs: %+v != %+v", again, got)
	}

	if empty := Aggregate(nil); empty != (Totals{}) {
		t.Errorf("Aggregate(nil) = %+v, want zeros", empty)
	}
}

func TestComputeStudentBalance(t *testing.T) {
	st := student.Student{
		ID:             "s1",
		Name:           "Test Student",
		Class:          "12",
		Division:       "B",
		BusStop:        "Market Square",
		BusFeeDiscount: 100,
	}
	payments := []payment.Payment{
		{StudentID: "s1", DevelopmentFee: 5000, BusFee: 400, TotalAmount: 5400, PaymentDate: time.Now()},
	}

	bal := ComputeStudentBalance(st, testConfig, payments)

	if bal.DevelopmentFee.Total != 13000 || bal.DevelopmentFee.Paid != 5000 || bal.DevelopmentFee.Remaining != 8000 {
		t.Errorf("development balance = %+v", bal.DevelopmentFee)
	}
	if bal.BusFee.Original != 900 || bal.BusFee.Discount != 100 || bal.BusFee.Total != 800 {
		t.Errorf("bus requirement = %+v", bal.BusFee)
	}
	if bal.BusFee.Paid != 400 || bal.BusFee.Remaining != 400 {
		t.Errorf("bus balance = %+v", bal.BusFee)
	}
	if bal.GrandTotal.Required != 13800 || bal.GrandTotal.Paid != 5400 || bal.GrandTotal.Remaining != 8400 {
		t.Errorf("grand total = %+v", bal.GrandTotal)
	}
}

func TestComputeStudentBalanceEmptyInputs(t *testing.T) {
	bal := ComputeStudentBalance(student.Student{Class: "3", Division: "A"}, Config{}, nil)
	if bal != (StudentBalance{}) {
		t.Errorf("expected all-zero balance, got %+v", bal)
	}
}

func TestDevelopmentFeeKey(t *testing.T) {
	tests := []struct {
		class, division, want string
	}{
		{"5", "A", "5"},
		{"10", "C", "10"},
		{"11", "A", "11-A"},
		{"12", "B", "12-B"},
	}
	for _, tt := range tests {
		if got := DevelopmentFeeKey(tt.class, tt.division); got != tt.want {
			t.Errorf("DevelopmentFeeKey(%q, %q) = %q, want %q", tt.class, tt.division, got, tt.want)
		}
	}
}
