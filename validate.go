package jd2pdf

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// inputValidator builds the shared validator. Field names in messages are
// the JSON names callers send.
func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(Decimal); ok {
				if value, present := d.Float64(); present {
					return value
				}
			}
			return nil
		}, Decimal{})
		validate = v
	})
	return validate
}

// Validate checks the input at the library boundary. Only the job title and
// description are mandatory.
func (in *Input) Validate() error {
	v := inputValidator()
	if err := v.Struct(&in.Job); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describe("job", err))
	}
	if strings.TrimSpace(in.Job.Title) == "" {
		return fmt.Errorf("%w: job.title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Job.Description) == "" {
		return fmt.Errorf("%w: job.description is required", ErrInvalidInput)
	}
	if in.Company != nil {
		if err := v.Struct(in.Company); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidInput, describe("company", err))
		}
	}
	return nil
}

// describe turns validator output into "job.title is required" style text.
func describe(prefix string, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, prefix+"."+fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s has more than %s entries", name, fe.Param())
		}
		return fmt.Sprintf("%s exceeds %s characters", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}
