package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of s. The first failure is translated
// through messages, looked up by "field.tag" and then by "tag"; "required"
// failures win over any other tag.
func validateStruct(s any, messages map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return common.Validation(err.Error())
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return common.Validation(lookupMessage(fe, messages))
		}
	}
	return common.Validation(lookupMessage(fieldErrs[0], messages))
}

func lookupMessage(fe validator.FieldError, messages map[string]string) string {
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// internalError hides err behind common.ErrorInternal while keeping its text
// for logs.
func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}
