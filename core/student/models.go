package student

import (
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/vipinkoroth/sarvodaya/core"
)

// Classes run from "1" to "12"; divisions from "A" to "E".
var (
	Divisions = []string{"A", "B", "C", "D", "E"}
)

// Student is an enrolled pupil. The admission number is the school-facing
// identity and is unique; ID is the storage identity.
type Student struct {
	ID             string    `json:"id"`
	AdmissionNo    string    `json:"admission_no"`
	Name           string    `json:"name"`
	Mobile         string    `json:"mobile"`
	Class          string    `json:"class"`
	Division       string    `json:"division"`
	BusStop        string    `json:"bus_stop"`
	BusNumber      string    `json:"bus_number"` // descriptive only
	BusTrip        string    `json:"bus_trip"`   // descriptive only
	BusFeeDiscount int       `json:"bus_fee_discount"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// ClassKey returns the "{class}-{division}" grouping key, e.g. "5-A".
func (s Student) ClassKey() string {
	return s.Class + "-" + s.Division
}

// ClassNumber returns the numeric class, 0 when the class is not "1"–"12".
func (s Student) ClassNumber() int {
	n, err := strconv.Atoi(s.Class)
	if err != nil || n < 1 || n > 12 {
		return 0
	}
	return n
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	AdmissionNo    string `json:"admission_no" validate:"required,alphanum_"`
	Name           string `json:"name" validate:"required"`
	Mobile         string `json:"mobile" validate:"omitempty,min=7"`
	Class          string `json:"class" validate:"required,class"`
	Division       string `json:"division" validate:"required,division"`
	BusStop        string `json:"bus_stop"`
	BusNumber      string `json:"bus_number"`
	BusTrip        string `json:"bus_trip"`
	BusFeeDiscount int    `json:"bus_fee_discount" validate:"min=0"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc Service) error {
	ns.AdmissionNo = core.CleanString(ns.AdmissionNo)
	ns.Name = core.CleanString(ns.Name)
	ns.Mobile = core.CleanString(ns.Mobile)
	ns.BusStop = core.CleanString(ns.BusStop)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckAdmissionNoUniqueness(ns.AdmissionNo)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name           string `json:"name"`
	Mobile         string `json:"mobile" validate:"omitempty,min=7"`
	Class          string `json:"class" validate:"omitempty,class"`
	Division       string `json:"division" validate:"omitempty,division"`
	BusStop        string `json:"bus_stop"`
	BusNumber      string `json:"bus_number"`
	BusTrip        string `json:"bus_trip"`
	BusFeeDiscount *int   `json:"bus_fee_discount" validate:"omitempty,min=0"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if us.Class == "" {
		us.Class = orig.Class
	}
	if us.Division == "" {
		us.Division = orig.Division
	}
	us.Mobile = core.CleanString(us.Mobile)
	us.BusStop = core.CleanString(us.BusStop)

	return validate.Struct(us)
}

type QueryFilter struct {
	Search   string `query:"search"` // matches Name or AdmissionNo
	Class    string `query:"class"`
	Division string `query:"division"`
	BusStop  string `query:"bus_stop"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Class == "" && qf.Division == "" && qf.BusStop == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.BusStop = core.CleanString(qf.BusStop)
}

// Validators

var (
	classTag  = "class"
	classText = "class must be between 1 and 12"

	divisionTag  = "division"
	divisionText = "division must be one of A, B, C, D or E"
)

// InitValidators registers the student-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(classTag, classValidation)
	core.RegisterCustomTranslation(validate, translator, classTag, classText)

	_ = validate.RegisterValidation(divisionTag, divisionValidation)
	core.RegisterCustomTranslation(validate, translator, divisionTag, divisionText)
}

func classValidation(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n >= 1 && n <= 12
}

func divisionValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, d := range Divisions {
		if val == d {
			return true
		}
	}
	return false
}
