package domain

import "errors"

// Domain errors are shared across layers; HTTP adapters map them to status
// codes with errors.Is.
var (
	// Container configuration errors
	ErrConfigNotFound  = errors.New("container configuration not found")
	ErrConfigNameTaken = errors.New("container name already in use")
	ErrInvalidCommand  = errors.New("invalid docker run command")

	// User and session errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("too many attempts")
	ErrInvalidProfile     = errors.New("invalid profile")
)
