package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required": "{field} is required",
		"gte":      "{field} must be greater than or equal to {param}",
		"lte":      "{field} must be less than or equal to {param}",
		"oneof":    "{field} must be one of {param}",
		"max":      "{field} must be less than or equal to {param}",
		"min":      "{field} must be greater than or equal to {param}",
		"email":    "{field} must be a valid email address",
		"uuid":     "{field} must be a valid UUID",
		"role":     "{field} must be one of admin restaurant diner",
		"date":     "{field} must be a date formatted as YYYY-MM-DD",
		"clock":    "{field} must be a time formatted as HH:MM",
		"excludes": "{field} must not contain {param}",
	}
)

// message renders the first known tag failure. name stands in for the
// field when the error came from a single variable.
func message(err error, name string) string {
	var valErrors val.ValidationErrors

	if errors.As(err, &valErrors) {
		for _, valErr := range valErrors {
			field := valErr.Field()
			if field == "" {
				field = name
			}

			if tmpl := messages[valErr.Tag()]; tmpl != "" {
				return strings.NewReplacer("{field}", field, "{param}", valErr.Param()).Replace(tmpl)
			}
		}

		return valErrors.Error()
	}

	return err.Error()
}
