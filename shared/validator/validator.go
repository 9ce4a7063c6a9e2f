package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cine/shared/constant"
	"cine/shared/failure"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

func registerDayFormatValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := time.Parse(constant.DayFormat, str)

	return err == nil
}

func registerClockFormatValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := time.Parse(constant.ClockFormat, str)

	return err == nil
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	if err := validate.RegisterValidation("dayformat", registerDayFormatValidation); err != nil {
		panic(err)
	}

	if err := validate.RegisterValidation("clockformat", registerClockFormatValidation); err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, then runs
// struct validation. Failures come back as invalid_argument errors.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.InvalidArgument(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.InvalidArgument(msg) //nolint:wrapcheck
	}

	return nil
}
