// Package validate checks request payloads against their `validate` tags.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/youth-club/core/internal/pkg/apperr"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		// Report fields under their JSON names.
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return instance
}

// Struct validates v. A failure is an apperr validation error whose details
// map each failing field to the rule it broke.
func Struct(what string, v any) error {
	return report(what, get().Struct(v))
}

// StructExcept is Struct skipping the named Go fields, for records whose
// remaining fields are filled in later.
func StructExcept(what string, v any, fields ...string) error {
	if len(fields) == 0 {
		return Struct(what, v)
	}
	return report(what, get().StructExcept(v, fields...))
}

func report(what string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("invalid "+what, nil)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return apperr.Validation("invalid "+what, details)
}
