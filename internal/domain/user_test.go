package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileError(t *testing.T) {
	err := &ProfileError{Fields: map[string]string{
		"password": "is too short",
		"email":    "is invalid",
	}}

	assert.Equal(t, []string{"email", "password"}, err.Paths())
	assert.Equal(t, "invalid profile: email: is invalid; password: is too short", err.Error())
	assert.ErrorIs(t, err, ErrInvalidProfile)
}
