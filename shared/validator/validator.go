package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"dinebook/shared/failure"
	"dinebook/shared/model"
	"dinebook/shared/role"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// civilValue presents domain value types to the validator as their text
// form so tags like role, date and clock see a plain string.
func civilValue(field reflect.Value) any {
	switch v := field.Interface().(type) {
	case model.Date:
		if v.IsZero() {
			return ""
		}

		return v.String()
	case model.TimeOfDay:
		return v.String()
	case role.Role:
		if v == role.Anonymous {
			return ""
		}

		return v.String()
	default:
		return nil
	}
}

func validRole(field val.FieldLevel) bool {
	r, err := role.Parse(field.Field().String())

	return err == nil && r.Valid()
}

func validDate(field val.FieldLevel) bool {
	_, err := model.ParseDate(field.Field().String())

	return err == nil
}

func validClock(field val.FieldLevel) bool {
	_, err := model.ParseTimeOfDay(field.Field().String())

	return err == nil
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	validate.RegisterCustomTypeFunc(civilValue, model.Date{}, model.TimeOfDay{}, role.Role(0))

	for tag, fn := range map[string]val.Func{
		"role":  validRole,
		"date":  validDate,
		"clock": validClock,
		"empty": func(fl val.FieldLevel) bool { return fl.Field().IsZero() },
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err, "")) //nolint:wrapcheck
	}

	return nil
}

// ValidateVar checks a single value, such as a route parameter, reporting
// failures under name.
func ValidateVar(name string, field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err, name)) //nolint:wrapcheck
	}

	return nil
}
