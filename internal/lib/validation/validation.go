// Package validation collects field-scoped, user-correctable errors.
//
// Compound operations (registration, both password reset flows) run every
// check and append to one Errors value instead of returning on the first
// failure, so a client always gets the complete set.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string
	Message string
}

// Errors keeps insertion order; it implements error.
type Errors []FieldError

func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}

	return "validation failed: " + strings.Join(parts, ", ")
}

// Err returns nil when nothing was collected, so callers can
// `return errs.Err()` unconditionally.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

// Map renders the errors as field -> message. Several messages on the same
// field are joined with "; ".
func (e Errors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if prev, ok := out[fe.Field]; ok {
			out[fe.Field] = prev + "; " + fe.Message
			continue
		}
		out[fe.Field] = fe.Message
	}

	return out
}

func As(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}

	return nil, false
}

// Merge appends the field errors carried by err to errs. Any other error is
// returned unchanged so the caller can treat it as a hard failure.
func Merge(errs Errors, err error) (Errors, error) {
	if err == nil {
		return errs, nil
	}

	found, ok := As(err)
	if !ok {
		return errs, err
	}

	return append(errs, found...), nil
}

// Struct checks the shape of req. Field failures come back as Errors;
// err is set only when the validator itself could not run.
func Struct(v *validator.Validate, req any) (Errors, error) {
	err := v.Struct(req)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	return FromValidator(verrs), nil
}

// FromValidator keeps the first failing rule per field.
func FromValidator(verrs validator.ValidationErrors) Errors {
	var (
		errs Errors
		seen = make(map[string]bool, len(verrs))
	)

	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true

		errs.Add(fe.Field(), message(fe))
	}

	return errs
}

func message(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s can not be null", fe.Field())
	case "email":
		return "You entered incorrect email"
	case "min", "max":
		return fmt.Sprintf("%s must be between the allowed length limits", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", fe.Field())
	default:
		return fmt.Sprintf("%s is not valid", fe.Field())
	}
}

// NewValidator returns a validator that reports json field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}
