package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var classCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{0,39}$`)

// Validator wraps go-playground struct validation with the portal's custom
// rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	// class_code: uppercase alphanumeric with dashes, max 40 chars.
	_ = v.RegisterValidation("class_code", func(fl validator.FieldLevel) bool {
		return classCodeRegex.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return ToValidationErrors(err)
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = e.Message
	}
	return strings.Join(parts, "; ")
}

func ToValidationErrors(err error) ValidationErrors {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "class_code":
		return fmt.Sprintf("%s must be an uppercase class code", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
