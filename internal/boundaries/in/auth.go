package in

import (
	"context"

	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
)

// AuthService signs users in and manages their profile.
type AuthService interface {
	// Login checks credentials. Attempts are throttled per client and email.
	Login(ctx context.Context, email, password, clientIP string) (domain.User, error)

	Profile(ctx context.Context, userID string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.ProfileResult, error)

	// CreateUser registers an account; used by the CLI seed command.
	CreateUser(ctx context.Context, name, email, password string) (domain.User, error)
}
