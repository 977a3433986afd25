package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// icd10Pattern matches an ICD-10 code: one letter, two digits, optional
// sub-classification (e.g. K29.7, I10, J45.909).
var icd10Pattern = regexp.MustCompile(`^[A-Za-z][0-9]{2}(\.[0-9A-Za-z]{1,4})?$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()

	// "icd10" validates a single code string, tolerating an attached
	// human-readable description ("K29.7 - Viêm dạ dày").
	_ = v.RegisterValidation("icd10", func(fl validator.FieldLevel) bool {
		return IsICD10Code(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// IsICD10Code reports whether s starts with an ICD-10-shaped code, ignoring
// any " - description" suffix.
func IsICD10Code(s string) bool {
	code := s
	if idx := strings.IndexAny(s, " -"); idx > 0 {
		code = s[:idx]
	}
	return icd10Pattern.MatchString(strings.TrimSpace(code))
}
