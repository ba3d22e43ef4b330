package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var tagMessages = map[string]string{
	"required": "is required",
	"len":      "must be exactly %s characters",
	"numeric":  "must contain only digits",
	"gt":       "must be greater than %s",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// firstValidationError renders the first failed rule as "<field> <message>".
func firstValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		msg = "is invalid"
	}
	if strings.Contains(msg, "%s") {
		msg = strings.Replace(msg, "%s", fe.Param(), 1)
	}
	return fe.Field() + " " + msg
}
