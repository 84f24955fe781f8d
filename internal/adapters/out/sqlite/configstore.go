package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/out"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

var _ out.ConfigStore = (*ConfigStore)(nil)

const configColumns = `id, name, image, tag, restart_policy, network, extra_args,
	ports, env_vars, labels, add_hosts, volumes, generated_command, created_at, updated_at`

// ConfigStore persists container configurations. Sequence fields are kept
// as JSON text columns.
type ConfigStore struct {
	db *sql.DB
}

// NewConfigStore creates a store on db, which must have been opened with Open.
func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// Insert stores a new record.
func (s *ConfigStore) Insert(ctx context.Context, rec domain.StoredConfig) error {
	row, err := toConfigRow(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO container_configs (`+configColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id, row.name, row.image, row.tag, row.restartPolicy, row.network, row.extraArgs,
		row.ports, row.envVars, row.labels, row.addHosts, row.volumes, row.command,
		row.createdAt, row.updatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConfigNameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert configuration: %w", err)
	}
	return nil
}

// Get returns the record with id.
func (s *ConfigStore) Get(ctx context.Context, id string) (domain.StoredConfig, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+configColumns+` FROM container_configs WHERE id = ?`, id)
	rec, err := scanConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredConfig{}, domain.ErrConfigNotFound
	}
	return rec, err
}

// Update overwrites every column except id and created_at.
func (s *ConfigStore) Update(ctx context.Context, rec domain.StoredConfig) error {
	row, err := toConfigRow(rec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE container_configs SET
		name = ?, image = ?, tag = ?, restart_policy = ?, network = ?, extra_args = ?,
		ports = ?, env_vars = ?, labels = ?, add_hosts = ?, volumes = ?,
		generated_command = ?, updated_at = ?
		WHERE id = ?`,
		row.name, row.image, row.tag, row.restartPolicy, row.network, row.extraArgs,
		row.ports, row.envVars, row.labels, row.addHosts, row.volumes,
		row.command, row.updatedAt, row.id)
	if isUniqueViolation(err) {
		return domain.ErrConfigNameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update configuration: %w", err)
	}
	return requireOneRow(res, domain.ErrConfigNotFound)
}

// Delete removes the record with id.
func (s *ConfigStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM container_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	return requireOneRow(res, domain.ErrConfigNotFound)
}

// List returns one page of records, newest first, and the number of
// records matching the search.
func (s *ConfigStore) List(ctx context.Context, q domain.ListQuery) ([]domain.StoredConfig, int, error) {
	where, args := "", []any{}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		where = ` WHERE name LIKE ? ESCAPE '\' OR image LIKE ? ESCAPE '\' OR tag LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM container_configs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count configurations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+configColumns+` FROM container_configs`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, q.PageSize, q.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer rows.Close()

	var items []domain.StoredConfig
	for rows.Next() {
		rec, err := scanConfig(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate configurations: %w", err)
	}
	return items, total, nil
}

// NameExists reports whether a record already uses name.
func (s *ConfigStore) NameExists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM container_configs WHERE name = ?`, name).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check name: %w", err)
	}
	return n > 0, nil
}

type configRow struct {
	id, name, image, tag, restartPolicy, network, extraArgs string
	ports, envVars, labels, addHosts, volumes               string
	command                                                 string
	createdAt, updatedAt                                    int64
}

func toConfigRow(rec domain.StoredConfig) (configRow, error) {
	c := rec.Config
	row := configRow{
		id:            rec.ID,
		name:          c.Name,
		image:         c.Image,
		tag:           c.Tag,
		restartPolicy: string(c.RestartPolicy),
		network:       c.Network,
		extraArgs:     c.ExtraArgs,
		command:       rec.Command,
		createdAt:     rec.CreatedAt.UnixNano(),
		updatedAt:     rec.UpdatedAt.UnixNano(),
	}

	var err error
	if row.ports, err = encodeList(c.Ports); err != nil {
		return row, err
	}
	if row.envVars, err = encodeList(c.EnvVars); err != nil {
		return row, err
	}
	if row.labels, err = encodeList(c.Labels); err != nil {
		return row, err
	}
	if row.addHosts, err = encodeList(c.AddHosts); err != nil {
		return row, err
	}
	if row.volumes, err = encodeList(c.Volumes); err != nil {
		return row, err
	}
	return row, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfig(sc scanner) (domain.StoredConfig, error) {
	var row configRow
	err := sc.Scan(&row.id, &row.name, &row.image, &row.tag, &row.restartPolicy, &row.network, &row.extraArgs,
		&row.ports, &row.envVars, &row.labels, &row.addHosts, &row.volumes, &row.command,
		&row.createdAt, &row.updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredConfig{}, err
	}
	if err != nil {
		return domain.StoredConfig{}, fmt.Errorf("failed to scan configuration: %w", err)
	}

	rec := domain.StoredConfig{
		ID: row.id,
		Config: dockerrun.Config{
			Name:          row.name,
			Image:         row.image,
			Tag:           row.tag,
			RestartPolicy: dockerrun.RestartPolicy(row.restartPolicy),
			Network:       row.network,
			ExtraArgs:     row.extraArgs,
		},
		Command:   row.command,
		CreatedAt: time.Unix(0, row.createdAt).UTC(),
		UpdatedAt: time.Unix(0, row.updatedAt).UTC(),
	}

	if err := decodeList(row.ports, &rec.Config.Ports); err != nil {
		return rec, err
	}
	if err := decodeList(row.envVars, &rec.Config.EnvVars); err != nil {
		return rec, err
	}
	if err := decodeList(row.labels, &rec.Config.Labels); err != nil {
		return rec, err
	}
	if err := decodeList(row.addHosts, &rec.Config.AddHosts); err != nil {
		return rec, err
	}
	if err := decodeList(row.volumes, &rec.Config.Volumes); err != nil {
		return rec, err
	}
	return rec, nil
}

func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode column: %w", err)
	}
	return string(b), nil
}

// decodeList leaves dst nil for an empty list.
func decodeList[T any](data string, dst *[]T) error {
	var items []T
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}
	if len(items) > 0 {
		*dst = items
	}
	return nil
}

func requireOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
