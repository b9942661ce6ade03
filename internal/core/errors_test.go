// AngelaMos | 2026
// errors_test.go

package core

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestFormatValidationError(t *testing.T) {
	type form struct {
		Username string `validate:"required"`
		Name     string `validate:"max=3"`
	}

	v := validator.New()
	err := v.Struct(form{Name: "Alice"})

	assert.Equal(
		t,
		"username is required, name must be at most 3 characters",
		FormatValidationError(err),
	)
}

func TestFormatValidationErrorPassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "plain", FormatValidationError(errors.New("plain")))
}
