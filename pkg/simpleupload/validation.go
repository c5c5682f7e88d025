package simpleupload

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructValidator checks request shape with struct tags. The custom tags
// objectkey, maxsize and allowedmime delegate to the same Rules checks the
// service applies, so both passes report the same reasons.
type StructValidator struct {
	rules    Rules
	validate *validator.Validate
}

// NewStructValidator builds a validator bound to rules.
func NewStructValidator(rules Rules) *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"objectkey": func(fl validator.FieldLevel) bool {
			return rules.CheckKey(fl.Field().String()) == nil
		},
		"maxsize": func(fl validator.FieldLevel) bool {
			return fl.Field().Int() <= rules.MaxBytes
		},
		"allowedmime": func(fl validator.FieldLevel) bool {
			return rules.CheckContentType(fl.Field().String()) == nil
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}

	return &StructValidator{rules: rules, validate: v}
}

// Struct validates s and returns its field errors, if any.
func (sv *StructValidator) Struct(s any) ValidationResult {
	var res ValidationResult
	err := sv.validate.Struct(s)
	if err == nil {
		return res
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		res.Errors = append(res.Errors, FieldError{Message: "invalid request", Err: err})
		return res
	}

	for _, fe := range fieldErrs {
		res.Errors = append(res.Errors, translate(fe))
	}
	return res
}

func translate(fe validator.FieldError) FieldError {
	field := fe.Field()
	var err error
	switch fe.Tag() {
	case "objectkey":
		err = ErrInvalidKeyFormat
	case "maxsize":
		err = ErrFileSizeExceeded
	case "min":
		err = ErrFileTooSmall
	case "allowedmime":
		err = ErrInvalidMIMEType
	case "required":
		return FieldError{Field: field, Message: field + " is required"}
	default:
		return FieldError{Field: field, Message: field + " is invalid"}
	}
	return FieldError{Field: field, Message: err.Error(), Err: err}
}
