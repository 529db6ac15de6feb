package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"meetflow/shared/failure"
	"strings"
	"time"
	"unicode"

	val "github.com/go-playground/validator/v10"
)

const maxIdempotencyKeyLength = 255

var validate *val.Validate

// idempotency keys are opaque to the server but must be printable and bounded.
func registerIdempotencyKeyValidation(field val.FieldLevel) bool {
	key, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	key = strings.TrimSpace(key)
	if key == "" || len(key) > maxIdempotencyKeyLength {
		return false
	}

	for _, r := range key {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

func registerIANAZoneValidation(field val.FieldLevel) bool {
	zone, ok := field.Field().Interface().(string)
	if !ok || zone == "" {
		return false
	}

	_, err := time.LoadLocation(zone)

	return err == nil
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	err := validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		empty := fl.Field().IsZero()

		return empty
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("idemkey", registerIdempotencyKeyValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("iana", registerIANAZoneValidation)
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
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

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
