package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSONBody parses and validates a JSON request body into dst. Struct
// fields use `validate` tags; violations come back as a VALIDATION_ERROR with
// a per-field details map.
func DecodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid JSON body")
	}
	return ValidateStruct(dst)
}

// ValidateStruct runs tag validation on an already decoded value.
func ValidateStruct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}

	details := make(map[string]string, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		details[strings.ToLower(fieldError.Field())] = ruleMessage(fieldError)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid request body").WithDetails(details)
}

func ruleMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldError.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldError.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldError.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fieldError.Param())
	default:
		return fmt.Sprintf("failed %s validation", fieldError.Tag())
	}
}

// UUIDParam reads a chi URL parameter as a UUID.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
