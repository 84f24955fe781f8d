// Package out defines the contracts use cases need from infrastructure.
package out

import (
	"context"

	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
)

// ConfigStore persists container configurations.
// Implementations return domain.ErrConfigNotFound for unknown ids and
// domain.ErrConfigNameTaken when a name is already used by another record.
type ConfigStore interface {
	Insert(ctx context.Context, rec domain.StoredConfig) error
	Get(ctx context.Context, id string) (domain.StoredConfig, error)
	Update(ctx context.Context, rec domain.StoredConfig) error
	Delete(ctx context.Context, id string) error

	// List returns the rows of the query's page and the total match count.
	List(ctx context.Context, q domain.ListQuery) ([]domain.StoredConfig, int, error)

	NameExists(ctx context.Context, name string) (bool, error)
}

// UserStore persists user accounts.
// Implementations return domain.ErrUserNotFound for unknown users and
// domain.ErrEmailInUse on email collisions.
type UserStore interface {
	Create(ctx context.Context, u domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, u domain.User) error
}
