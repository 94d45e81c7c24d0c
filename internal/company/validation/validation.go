// Package validation checks company records against the directory's field
// rules and converts validator failures into user-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	e "github.com/gartstein/companydir/internal/company/errors"
	"github.com/gartstein/companydir/internal/company/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// MinFoundedYear is the earliest accepted founding year.
const MinFoundedYear = 1900

var messages = map[string]string{
	"name.required":     "Company name is required",
	"location.required": "Location is required",
	"location.notblank": "Location is required",
	"size.min":          "Size must be at least 1 employee",
	"founded.min":       fmt.Sprintf("Founded year must be after %d", MinFoundedYear),
	"founded.notfuture": "Founded year cannot be in the future",
	"minSize.numeric":   "minSize must be a number",
	"maxSize.numeric":   "maxSize must be a number",
}

// Validator validates company records.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New returns a Validator using the wall clock for the founded-year ceiling.
func New() *Validator {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.validate.RegisterValidation("notblank", validators.NotBlank)
	_ = v.validate.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(v.now().Year())
	})
	return v
}

// Company returns a *errors.ValidationError describing every rule c breaks,
// or nil when c may be persisted.
func (v *Validator) Company(c *models.Company) error {
	if c == nil {
		return &e.ValidationError{Fields: map[string]string{"company": "company data required"}}
	}
	err := v.validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate company: %w", err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = Message(fe.Field(), fe.Tag(), fe.Error())
	}
	return &e.ValidationError{Fields: fields}
}

// Message looks up the user-facing message for a field/rule pair.
func Message(field, tag, fallback string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return fallback
}
