package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3,username"`
	Email    string `json:"email" validate:"required,email"`
	Points   *int   `json:"points" validate:"omitempty,min=0"`
	Vote     string `form:"vote" validate:"omitempty,oneof=ai real"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	Configure(v)
	return v
}

func TestFormatValidationError(t *testing.T) {
	v := newValidate()
	negative := -1

	tests := []struct {
		name  string
		input signup
		want  string
	}{
		{"missing fields", signup{}, "username is required; email is required"},
		{"short username", signup{Username: "ab", Email: "a@b.co"}, "username must be at least 3 characters"},
		{"bad characters", signup{Username: "bad name", Email: "a@b.co"}, "username may only contain letters, digits and underscores"},
		{"bad email", signup{Username: "good_name", Email: "nope"}, "email must be a valid email"},
		{"negative number", signup{Username: "good_name", Email: "a@b.co", Points: &negative}, "points must be at least 0"},
		{"form tag name", signup{Username: "good_name", Email: "a@b.co", Vote: "maybe"}, "vote must be one of [ai real]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			assert.Equal(t, tt.want, FormatValidationError(err))
		})
	}

	assert.NoError(t, v.Struct(signup{Username: "good_name", Email: "a@b.co"}))
	assert.Equal(t, "plain", FormatValidationError(errors.New("plain")))
}
