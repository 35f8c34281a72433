// Package validation wraps go-playground/validator with the custom tags used
// by request payloads.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// Validator validates request structs.
type Validator struct {
	validate *validator.Validate
}

// New builds a validator with the "specialization" and "role" tags registered.
func New() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	_ = validate.RegisterValidation("specialization", SpecializationValidator)
	_ = validate.RegisterValidation("role", RoleValidator)
	return &Validator{validate: validate}
}

// SpecializationValidator accepts any casing of a known specialization.
func SpecializationValidator(fl validator.FieldLevel) bool {
	_, err := domain.ParseSpecialization(fl.Field().String())
	return err == nil
}

// RoleValidator accepts the user and technician roles.
func RoleValidator(fl validator.FieldLevel) bool {
	_, err := domain.ParseRole(fl.Field().String())
	return err == nil
}

// Struct validates v and returns a VALIDATION_FAILED error listing the
// offending fields.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = fe.Tag()
	}
	return apperrors.NewValidationError("validation failed", details)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
