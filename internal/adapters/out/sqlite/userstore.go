package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/out"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
)

var _ out.UserStore = (*UserStore)(nil)

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// UserStore persists user accounts.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a store on db, which must have been opened with Open.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.UnixNano(), u.UpdatedAt.UnixNano())
	if isUniqueViolation(err) {
		return domain.ErrEmailInUse
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *UserStore) Update(ctx context.Context, u domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, u.UpdatedAt.UnixNano(), u.ID)
	if isUniqueViolation(err) {
		return domain.ErrEmailInUse
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireOneRow(res, domain.ErrUserNotFound)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg string) (domain.User, error) {
	var u domain.User
	var created, updated int64
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	u.UpdatedAt = time.Unix(0, updated).UTC()
	return u, nil
}
