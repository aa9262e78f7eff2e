// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// National IDs: DNI (8 digits + letter) or NIE (X/Y/Z + 7 digits + letter),
// matched after trimming and uppercasing.
var dniPattern = regexp.MustCompile(`^(?:[0-9]{8}|[XYZ][0-9]{7})[A-Z]$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("dni", validateDNI)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateDNI(fl validator.FieldLevel) bool {
	dni := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
	return dniPattern.MatchString(dni)
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "dni":
		return "Invalid national ID"
	case "datetime":
		return e.Field() + " must use the format " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
