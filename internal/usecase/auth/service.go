// Package auth implements sign-in and profile management for studio users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"

	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/in"
	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/out"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/internal/logging"
)

const (
	// DefaultBcryptCost is the default cost for bcrypt hashing.
	DefaultBcryptCost = 10

	minNameLen     = 2
	maxNameLen     = 100
	maxEmailLen    = 190
	minPasswordLen = 6
	maxPasswordLen = 128
)

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)

var validate = validator.New()

// Config holds the authentication settings.
type Config struct {
	BcryptCost int
}

var _ in.AuthService = (*Service)(nil)

// Service implements the AuthService interface.
type Service struct {
	config    Config
	users     out.UserStore
	limiter   out.RateLimiter
	metrics   out.Metrics
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewService creates a new auth service. limiter and metrics may be nil.
func NewService(config Config, users out.UserStore, limiter out.RateLimiter, metrics out.Metrics) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = DefaultBcryptCost
	}
	return &Service{
		config:    config,
		users:     users,
		limiter:   limiter,
		metrics:   metrics,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Login returns the user matching email and password.
func (s *Service) Login(ctx context.Context, email, password, clientIP string) (domain.User, error) {
	email = normalizeEmail(email)
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:    "usecase",
		logging.FieldUseCase:  "Login",
		logging.FieldClientIP: clientIP,
	})
	log := logging.FromCtx(ctx)

	if s.limiter != nil && !s.limiter.Allow(ctx, "login:"+clientIP+":"+email) {
		s.loginAttempt("rate_limited")
		log.Warn().Msg("login rate limited")
		return domain.User{}, domain.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, fmt.Errorf("failed to look up user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.loginAttempt("invalid")
		log.Debug().Msg("login for unknown email")
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.loginAttempt("invalid")
		log.Debug().Str(logging.FieldUserID, u.ID).Msg("password mismatch")
		return domain.User{}, domain.ErrInvalidCredentials
	}

	s.loginAttempt("ok")
	log.Info().Str(logging.FieldUserID, u.ID).Msg("user signed in")
	return u, nil
}

// Profile returns the user with id.
func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return u, nil
}

// UpdateProfile changes name and email, and the password when a new one is
// given and confirmed. A mismatched confirmation leaves the password as is
// and is reported through ProfileResult.PasswordUpdated.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.ProfileResult, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "usecase",
		logging.FieldUseCase: "UpdateProfile",
		logging.FieldUserID:  userID,
	})
	log := logging.FromCtx(ctx)

	name, email, perr := s.checkProfile(update)
	if perr != nil {
		return domain.ProfileResult{}, perr
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.ProfileResult{}, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	if email != u.Email {
		other, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			return domain.ProfileResult{}, domain.ErrEmailInUse
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return domain.ProfileResult{}, fmt.Errorf("failed to look up email: %w", err)
		}
	}

	u.Name = name
	u.Email = email
	updated := false
	if update.NewPassword != "" && update.NewPassword == update.ConfirmPassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(update.NewPassword), s.config.BcryptCost)
		if err != nil {
			return domain.ProfileResult{}, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = string(hash)
		updated = true
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		return domain.ProfileResult{}, fmt.Errorf("failed to update user %s: %w", userID, err)
	}

	log.Info().Bool("password_updated", updated).Msg("profile updated")
	return domain.ProfileResult{User: u, PasswordUpdated: updated}, nil
}

// CreateUser registers a new account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, name, email, password string) (domain.User, error) {
	name, email, perr := s.checkProfile(domain.ProfileUpdate{
		Name:            name,
		Email:           email,
		NewPassword:     password,
		ConfirmPassword: password,
	})
	if perr == nil && password == "" {
		perr = &domain.ProfileError{Fields: map[string]string{"password": "is required"}}
	}
	if perr != nil {
		return domain.User{}, perr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	u := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("failed to create user %s: %w", email, err)
	}

	logging.FromCtx(ctx).Info().
		Str(logging.FieldLayer, "usecase").
		Str(logging.FieldUseCase, "CreateUser").
		Str(logging.FieldUserID, u.ID).
		Msg("user created")
	return u, nil
}

// checkProfile strips markup from the name, normalizes the email and
// collects every rejected field.
func (s *Service) checkProfile(update domain.ProfileUpdate) (string, string, error) {
	fields := map[string]string{}

	name := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(update.Name)))
	switch n := utf8.RuneCountInString(name); {
	case n < minNameLen:
		fields["name"] = "is too short"
	case n > maxNameLen:
		fields["name"] = "is too long"
	}

	email := normalizeEmail(update.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		fields["email"] = "is invalid"
	} else if len(email) > maxEmailLen {
		fields["email"] = "is too long"
	}

	if p := update.NewPassword; p != "" {
		switch n := utf8.RuneCountInString(p); {
		case n < minPasswordLen:
			fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLen)
		case n > maxPasswordLen:
			fields["password"] = fmt.Sprintf("must be at most %d characters", maxPasswordLen)
		}
	}

	if len(fields) > 0 {
		return "", "", &domain.ProfileError{Fields: fields}
	}
	return name, email, nil
}

func (s *Service) loginAttempt(result string) {
	if s.metrics != nil {
		s.metrics.LoginAttempt(result)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
