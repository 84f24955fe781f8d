package domain

import (
	"slices"
	"strings"
	"time"
)

// User is an account allowed to sign in to the studio.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the editable profile fields. The password is only
// changed when NewPassword is set and matches ConfirmPassword.
type ProfileUpdate struct {
	Name            string
	Email           string
	NewPassword     string
	ConfirmPassword string
}

// ProfileResult is the outcome of a profile update.
type ProfileResult struct {
	User            User `json:"user"`
	PasswordUpdated bool `json:"passwordUpdated"`
}

// Session identifies the signed-in user of a request.
type Session struct {
	UserID string
	Email  string
}

// ProfileError lists the rejected profile fields, keyed by field name.
type ProfileError struct {
	Fields map[string]string
}

func (e *ProfileError) Error() string {
	paths := e.Paths()
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, p+": "+e.Fields[p])
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

// Paths returns the rejected field names in a stable order.
func (e *ProfileError) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Is matches ErrInvalidProfile.
func (e *ProfileError) Is(target error) bool {
	return target == ErrInvalidProfile
}
