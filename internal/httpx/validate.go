// backend/internal/httpx/validate.go
package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"quiz-platform/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct checks the struct tags of v and reports the first problem as a
// validation error.
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperr.Validation(describe(fe))
	}
	return apperr.Wrap(apperr.KindValidation, "Invalid request", err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: this field is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s: enter a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s: must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s", fe.Field(), fe.Param())
	case "unique":
		return fmt.Sprintf("%s: must not contain duplicates", fe.Field())
	case "gte", "lte":
		return fmt.Sprintf("%s: out of range", fe.Field())
	default:
		return fmt.Sprintf("%s: failed %q validation", fe.Field(), fe.Tag())
	}
}
