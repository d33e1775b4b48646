package validator

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-intel/errors"
)

// CustomValidator implements echo.Validator using go-playground/validator.
// Field errors are flattened into a single readable message so API clients
// see which fields failed instead of the library's internal format.
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	return &CustomValidator{v: validator.New()}
}

// Validate performs struct validation on a bound request
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
	}
	return errors.ErrInvalidArgument(strings.Join(messages, "; "))
}
