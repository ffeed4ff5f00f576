package cli

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// renderValidationError turns a validator.ValidationErrors into the same
// usageError shape every other CLI usage mistake is reported through.
func renderValidationError(cmdName string, err error) error {
	var valErrs validator.ValidationErrors
	if !asValidationErrors(err, &valErrs) {
		return err
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fmt.Sprintf("%s: %s", ve.Field(), formatValidationTag(ve)))
	}
	return newUsageError(fmt.Sprintf("%s: %s", cmdName, strings.Join(messages, "; ")))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = ve
	return true
}

func formatValidationTag(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	default:
		return fmt.Sprintf("failed %q validation", ve.Tag())
	}
}
