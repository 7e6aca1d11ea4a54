package collection

import (
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/vipinkoroth/sarvodaya/core"
)

// Sections are the four fixed organizational bands classes roll up into.
type Section string

const (
	SectionLP  Section = "lp"  // classes 1-4
	SectionUP  Section = "up"  // classes 5-7
	SectionHS  Section = "hs"  // classes 8-10
	SectionHSS Section = "hss" // classes 11-12
)

var Sections = []Section{SectionLP, SectionUP, SectionHS, SectionHSS}

// SectionForClass maps a class to its section. Classes outside "1"-"12"
// belong to no section and are excluded from section rollups.
func SectionForClass(class string) (Section, bool) {
	n, err := strconv.Atoi(class)
	if err != nil {
		return "", false
	}
	switch {
	case n >= 1 && n <= 4:
		return SectionLP, true
	case n >= 5 && n <= 7:
		return SectionUP, true
	case n >= 8 && n <= 10:
		return SectionHS, true
	case n >= 11 && n <= 12:
		return SectionHSS, true
	}
	return "", false
}

// Category tags a collection entry with the kind of money handed over.
type Category string

const (
	CategoryBusFee          Category = "bus_fee"
	CategoryDevelopmentFund Category = "development_fund"
	CategoryOthers          Category = "others"
)

var Categories = []Category{CategoryBusFee, CategoryDevelopmentFund, CategoryOthers}

// TeacherEntry records an amount a class teacher claims to have handed to a
// section head. Entries are independent ledger rows and are never validated
// against what the class "should" have collected.
type TeacherEntry struct {
	ID          string    `json:"id"`
	FromTeacher string    `json:"from_teacher"` // class key, e.g. "5-A"
	Section     Section   `json:"section"`
	SectionHead string    `json:"section_head"` // receiving user
	Category    Category  `json:"category"`
	Amount      int       `json:"amount"`
	Date        time.Time `json:"date"` // UTC
	Remarks     string    `json:"remarks,omitempty"`
	RecordedBy  string    `json:"recorded_by"`
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// SectionEntry records an amount a section head claims to have handed to the
// clerk.
type SectionEntry struct {
	ID          string    `json:"id"`
	FromSection Section   `json:"from_section"`
	Category    Category  `json:"category"`
	Amount      int       `json:"amount"`
	Date        time.Time `json:"date"` // UTC
	Remarks     string    `json:"remarks,omitempty"`
	RecordedBy  string    `json:"recorded_by"`
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewTeacherEntry contains information needed to record a TeacherEntry.
type NewTeacherEntry struct {
	FromTeacher string    `json:"from_teacher" validate:"required"`
	Section     Section   `json:"section" validate:"required,section"`
	SectionHead string    `json:"section_head" validate:"required"`
	Category    Category  `json:"category" validate:"required,feecategory"`
	Amount      int       `json:"amount" validate:"min=0"`
	Date        time.Time `json:"date"`
	Remarks     string    `json:"remarks"`
}

func (ne *NewTeacherEntry) Validate(validate *validator.Validate) error {
	ne.FromTeacher = core.CleanString(ne.FromTeacher)
	ne.SectionHead = core.CleanString(ne.SectionHead, true /* lower */)
	ne.Remarks = core.CleanString(ne.Remarks)
	return validate.Struct(ne)
}

// NewSectionEntry contains information needed to record a SectionEntry.
type NewSectionEntry struct {
	FromSection Section   `json:"from_section" validate:"required,section"`
	Category    Category  `json:"category" validate:"required,feecategory"`
	Amount      int       `json:"amount" validate:"min=0"`
	Date        time.Time `json:"date"`
	Remarks     string    `json:"remarks"`
}

func (ne *NewSectionEntry) Validate(validate *validator.Validate) error {
	ne.Remarks = core.CleanString(ne.Remarks)
	return validate.Struct(ne)
}

// UpdateEntry defines what may be corrected on either entry variant.
type UpdateEntry struct {
	Category Category  `json:"category" validate:"omitempty,feecategory"`
	Amount   *int      `json:"amount" validate:"omitempty,min=0"`
	Date     time.Time `json:"date"`
	Remarks  string    `json:"remarks"`
}

func (ue *UpdateEntry) Validate(validate *validator.Validate) error {
	ue.Remarks = core.CleanString(ue.Remarks)
	return validate.Struct(ue)
}

type QueryFilter struct {
	Section  Section   `query:"section"`
	Teacher  string    `query:"teacher"` // class key
	Category Category  `query:"category"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Section == "" && qf.Teacher == "" && qf.Category == "" &&
		qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

// Validators

var (
	sectionTag  = "section"
	sectionText = "section must be one of lp, up, hs or hss"

	categoryTag  = "feecategory"
	categoryText = "category must be one of bus_fee, development_fund or others"
)

// InitValidators registers the collection-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(sectionTag, sectionValidation)
	core.RegisterCustomTranslation(validate, translator, sectionTag, sectionText)

	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}

func sectionValidation(fl validator.FieldLevel) bool {
	val := Section(fl.Field().String())
	for _, s := range Sections {
		if val == s {
			return true
		}
	}
	return false
}

func categoryValidation(fl validator.FieldLevel) bool {
	val := Category(fl.Field().String())
	for _, c := range Categories {
		if val == c {
			return true
		}
	}
	return false
}
