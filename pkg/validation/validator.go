// Package validation checks record shapes at construction and decode time.
//
// Records declare their structural rules with go-playground struct tags.
// Closed enumerations use the custom "enum" tag, which defers to the field's
// own Valid method so the allowed set lives next to the type.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("validation failed")

// Enum is implemented by closed enumerations.
type Enum interface {
	Valid() bool
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report wire names rather than Go field names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("enum", validateEnum); err != nil {
			panic(fmt.Sprintf("validation: register enum: %v", err))
		}
		validate = v
	})
	return validate
}

func validateEnum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.CanInterface() {
		return false
	}
	if e, ok := field.Interface().(Enum); ok {
		return e.Valid()
	}
	if field.CanAddr() {
		if e, ok := field.Addr().Interface().(Enum); ok {
			return e.Valid()
		}
	}
	return false
}

// FieldError describes a single structural violation.
type FieldError struct {
	Record string // record kind, e.g. "node", "edge"
	Field  string // dotted wire path
	Tag    string // failed rule
	Param  string
	Value  any
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	prefix := e.Field
	if e.Record != "" {
		prefix = e.Record + "." + e.Field
	}
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s: field is required", prefix)
	case "enum", "oneof":
		return fmt.Sprintf("%s: %v is not an allowed value", prefix, e.Value)
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s", prefix, e.Param)
	case "max", "lte":
		return fmt.Sprintf("%s: must not exceed %s", prefix, e.Param)
	default:
		if e.Tag == "" {
			return fmt.Sprintf("%s: invalid value %v", prefix, e.Value)
		}
		return fmt.Sprintf("%s: validation failed (%s)", prefix, e.Tag)
	}
}

// Unwrap lets errors.Is match ErrInvalid.
func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

// Struct validates v against its struct tags. record names the record kind
// for error messages. The first violation is returned as a *FieldError.
func Struct(record string, v any) error {
	if v == nil {
		return &FieldError{Record: record, Field: "(root)", Tag: "required"}
	}
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%s: %w: %v", record, ErrInvalid, err)
	}
	fe := verrs[0]
	return &FieldError{
		Record: record,
		Field:  trimNamespace(fe.Namespace()),
		Tag:    fe.Tag(),
		Param:  fe.Param(),
		Value:  fe.Value(),
	}
}

// Invalid builds a FieldError for a rule checked outside struct tags.
func Invalid(record, field string, value any) error {
	return &FieldError{Record: record, Field: field, Value: value}
}

// trimNamespace drops the leading struct name from a validator namespace.
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
