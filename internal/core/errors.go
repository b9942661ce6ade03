// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrInvalidInput   = errors.New("invalid input")
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionRevoked = errors.New("session revoked")
)

// FormatValidationError turns validator field errors into a short
// comma separated list such as "username is required, name is required".
func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(
				msgs,
				fmt.Sprintf("%s must be at most %s characters", field, fe.Param()),
			)
		case "gt":
			msgs = append(
				msgs,
				fmt.Sprintf("%s must be greater than %s", field, fe.Param()),
			)
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}

	return strings.Join(msgs, ", ")
}
