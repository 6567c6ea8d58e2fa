package model

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a request field to the reason it was rejected.
type ValidationErrors map[string]string

// Add records the first failure for field.
func (v ValidationErrors) Add(field, reason string) {
	if _, ok := v[field]; !ok {
		v[field] = reason
	}
}

// Empty reports whether no field failed.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// date accepts what ParseDate accepts.
	err := v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(err)
	}

	return v
}

// Validate checks s against its `validate` struct tags.
func Validate(s any) ValidationErrors {
	return collect(validate.Struct(s))
}

// ValidatePartial checks only the named struct fields of s.
func ValidatePartial(s any, fields ...string) ValidationErrors {
	if len(fields) == 0 {
		return ValidationErrors{}
	}
	return collect(validate.StructPartial(s, fields...))
}

func collect(err error) ValidationErrors {
	errs := ValidationErrors{}
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("request", "is invalid")
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), reason(fe))
	}
	return errs
}

// reason renders a failed rule the way clients see it.
func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Param() == "1" {
			return "is required"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "confirmation does not match"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "date":
		return "must be a valid date (YYYY-MM-DD)"
	default:
		return "is invalid"
	}
}
