package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vipinkoroth/sarvodaya/core"
)

// Payment is a single fee collection event. Student identity fields are a
// snapshot taken at payment time so the row survives student removal; the
// StudentID reference may dangle (empty) afterwards.
type Payment struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id,omitempty"` // weak reference; may be empty

	// denormalized snapshot of the student at payment time
	StudentName string `json:"student_name"`
	AdmissionNo string `json:"admission_no"`
	Class       string `json:"class"`
	Division    string `json:"division"`

	DevelopmentFee int    `json:"development_fee"`
	BusFee         int    `json:"bus_fee"`
	SpecialFee     int    `json:"special_fee"`
	SpecialFeeType string `json:"special_fee_type,omitempty"`
	TotalAmount    int    `json:"total_amount"` // always DevelopmentFee + BusFee + SpecialFee

	PaymentDate time.Time `json:"payment_date"` // UTC; set at creation, immutable
	AddedBy     string    `json:"added_by"`
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// ClassKey returns the "{class}-{division}" grouping key from the snapshot.
func (p Payment) ClassKey() string {
	return p.Class + "-" + p.Division
}

// NewPayment contains information needed to record a Payment against a Student.
type NewPayment struct {
	StudentID      string `json:"student_id" validate:"required"`
	DevelopmentFee int    `json:"development_fee" validate:"min=0"`
	BusFee         int    `json:"bus_fee" validate:"min=0"`
	SpecialFee     int    `json:"special_fee" validate:"min=0"`
	SpecialFeeType string `json:"special_fee_type" validate:"required_with=SpecialFee"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.StudentID = core.CleanString(np.StudentID)
	np.SpecialFeeType = core.CleanString(np.SpecialFeeType)
	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.DevelopmentFee+np.BusFee+np.SpecialFee == 0 {
		return core.NewValidationError(errZeroPayment)
	}
	return nil
}

// UpdatePayment defines what information may be corrected on an existing
// Payment. PaymentDate and the student snapshot are immutable.
type UpdatePayment struct {
	DevelopmentFee *int   `json:"development_fee" validate:"omitempty,min=0"`
	BusFee         *int   `json:"bus_fee" validate:"omitempty,min=0"`
	SpecialFee     *int   `json:"special_fee" validate:"omitempty,min=0"`
	SpecialFeeType string `json:"special_fee_type"`
}

func (up *UpdatePayment) Validate(validate *validator.Validate) error {
	up.SpecialFeeType = core.CleanString(up.SpecialFeeType)
	return validate.Struct(up)
}

type QueryFilter struct {
	StudentID string    `query:"student_id"`
	Class     string    `query:"class"`
	Division  string    `query:"division"`
	BusStop   string    `query:"-"` // resolved via student lookup, not persisted on payments
	DateFrom  time.Time `query:"date_from"`
	DateTo    time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.Class == "" && qf.Division == "" &&
		qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}
