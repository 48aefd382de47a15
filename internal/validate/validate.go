// Package validate checks decoded request bodies against their struct tags.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/choreclock/internal/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// FieldError is a single failed rule, reported by JSON field name.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

func (f FieldError) String() string {
	if f.Param != "" {
		return f.Field + " failed on " + f.Tag + "=" + f.Param
	}
	return f.Field + " failed on " + f.Tag
}

// Struct validates s. Rule failures come back as an apperr validation error
// listing every failed field.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	parts := make([]string, 0, len(ve))
	for _, fe := range Fields(ve) {
		parts = append(parts, fe.String())
	}
	return apperr.Validation("%s", strings.Join(parts, "; "))
}

// Fields flattens validator errors into FieldErrors.
func Fields(ve validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if i := strings.Index(name, ","); i != -1 {
				name = name[:i]
			}
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
