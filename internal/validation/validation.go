// Package validation holds the request validator registered on echo and
// the format checks shared with the service layer.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vitrii/agenda/internal/model"
)

var hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// timestampLayouts are tried in order by ParseTimestamp.  Values without a
// zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// IsISODate reports whether s is a calendar date in YYYY-MM-DD form.
func IsISODate(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsHHMM reports whether s is a 24-hour time in HH:MM form.
func IsHHMM(s string) bool {
	return hhmmRegex.MatchString(s)
}

// ParseTimestamp parses an ISO 8601 instant and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the agenda-specific tags registered:
// visibility, eventstatus, isodate, hhmm and isotime.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
		return model.Visibility(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("eventstatus", func(fl validator.FieldLevel) bool {
		return model.EventStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return IsISODate(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsHHMM(fl.Field().String())
	})
	_ = v.RegisterValidation("isotime", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String())
		return err == nil
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.  The first failing field is turned
// into a readable message naming the JSON field.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return err
	}
	return errors.New(message(vErrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field %s is required", field)
	case "visibility":
		return fmt.Sprintf("field %s must be one of publico, privado_usuarios, privado", field)
	case "eventstatus":
		return fmt.Sprintf("field %s must be one of pendente, realizado, pendente_pagamento, substituicao", field)
	case "isodate":
		return fmt.Sprintf("field %s must be a date in YYYY-MM-DD format", field)
	case "hhmm":
		return fmt.Sprintf("field %s must be a time in HH:MM format", field)
	case "isotime":
		return fmt.Sprintf("field %s must be an ISO 8601 timestamp", field)
	case "max":
		return fmt.Sprintf("field %s exceeds maximum length %s", field, fe.Param())
	default:
		return fmt.Sprintf("field %s is invalid", field)
	}
}
