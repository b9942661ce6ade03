// AngelaMos | 2026
// errors.go

package member

import (
	"errors"

	"github.com/carterperez-dev/templates/member-portal/internal/core"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrSponsorNotFound = errors.New("sponsor does not exist")
)

// ValidationError carries a message safe to show the user. It matches
// core.ErrInvalidInput and, when set, the underlying cause.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{core.ErrInvalidInput}
	}
	return []error{core.ErrInvalidInput, e.Err}
}
