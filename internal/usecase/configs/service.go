// Package configs implements the container configuration use cases: CRUD,
// listing, duplication, live preview and import from command text.
package configs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/in"
	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/out"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/internal/logging"
	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

// maxCopyAttempts bounds the numeric suffix search in Duplicate.
const maxCopyAttempts = 100

// Config holds the listing limits.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

var _ in.ConfigService = (*Service)(nil)

// Service implements the ConfigService interface.
type Service struct {
	config  Config
	store   out.ConfigStore
	metrics out.Metrics
	now     func() time.Time
	newID   func() string
}

// NewService creates a new configuration service. metrics may be nil.
func NewService(config Config, store out.ConfigStore, metrics out.Metrics, opts ...Option) *Service {
	if config.MaxPageSize < 1 {
		config.MaxPageSize = 100
	}
	if config.DefaultPageSize < 1 {
		config.DefaultPageSize = 10
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	s := &Service{
		config:  config,
		store:   store,
		metrics: metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates raw, renders its compact command and stores both.
func (s *Service) Create(ctx context.Context, raw any) (domain.StoredConfig, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "usecase",
		logging.FieldUseCase: "CreateConfig",
	})
	log := logging.FromCtx(ctx)

	cfg, err := dockerrun.Validate(raw)
	if err != nil {
		s.metrics.ConfigOperation("create", resultOf(err))
		log.Debug().Err(err).Msg("configuration rejected")
		return domain.StoredConfig{}, err
	}

	rec, err := s.insert(ctx, cfg)
	s.metrics.ConfigOperation("create", resultOf(err))
	if err != nil {
		return domain.StoredConfig{}, err
	}

	log.Info().Str(logging.FieldConfigID, rec.ID).Str("name", rec.Name()).Msg("configuration created")
	return rec, nil
}

// Get returns the stored configuration with the given id.
func (s *Service) Get(ctx context.Context, id string) (domain.StoredConfig, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.StoredConfig{}, fmt.Errorf("failed to get configuration %s: %w", id, err)
	}
	return rec, nil
}

// Update replaces the record with id by the validated raw input and
// regenerates its command. Nothing is written when validation fails.
func (s *Service) Update(ctx context.Context, id string, raw any) (domain.StoredConfig, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:    "usecase",
		logging.FieldUseCase:  "UpdateConfig",
		logging.FieldConfigID: id,
	})
	log := logging.FromCtx(ctx)

	rec, err := s.update(ctx, id, raw)
	s.metrics.ConfigOperation("update", resultOf(err))
	if err != nil {
		log.Debug().Err(err).Msg("update failed")
		return domain.StoredConfig{}, err
	}

	log.Info().Str("name", rec.Name()).Msg("configuration updated")
	return rec, nil
}

func (s *Service) update(ctx context.Context, id string, raw any) (domain.StoredConfig, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.StoredConfig{}, fmt.Errorf("failed to get configuration %s: %w", id, err)
	}

	cfg, err := dockerrun.Validate(raw)
	if err != nil {
		return domain.StoredConfig{}, err
	}

	existing.Config = cfg
	existing.Command = s.render(cfg, dockerrun.Compact)
	existing.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, existing); err != nil {
		return domain.StoredConfig{}, fmt.Errorf("failed to update configuration %s: %w", id, err)
	}
	return existing, nil
}

// Delete removes the record with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:    "usecase",
		logging.FieldUseCase:  "DeleteConfig",
		logging.FieldConfigID: id,
	})

	err := s.store.Delete(ctx, id)
	s.metrics.ConfigOperation("delete", resultOf(err))
	if err != nil {
		return fmt.Errorf("failed to delete configuration %s: %w", id, err)
	}

	logging.FromCtx(ctx).Info().Msg("configuration deleted")
	return nil
}

// List returns one page of configurations, newest first. Out-of-range
// paging parameters are clamped rather than rejected.
func (s *Service) List(ctx context.Context, q domain.ListQuery) (domain.ConfigPage, error) {
	q = q.Normalize(s.config.DefaultPageSize, s.config.MaxPageSize)

	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return domain.ConfigPage{}, fmt.Errorf("failed to list configurations: %w", err)
	}
	if items == nil {
		items = []domain.StoredConfig{}
	}

	logging.FromCtx(ctx).Debug().
		Str(logging.FieldLayer, "usecase").
		Str(logging.FieldUseCase, "ListConfigs").
		Int(logging.FieldCount, len(items)).
		Int("total", total).
		Msg("configurations listed")

	return domain.ConfigPage{
		Items:      items,
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: domain.TotalPages(total, q.PageSize),
	}, nil
}

// Duplicate stores a copy of the record with id. The copy is named
// "<name>-copy", or "<name>-copy-<unix millis>" when that is taken, with a
// further "-<n>" suffix if even that collides.
func (s *Service) Duplicate(ctx context.Context, id string) (domain.StoredConfig, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:    "usecase",
		logging.FieldUseCase:  "DuplicateConfig",
		logging.FieldConfigID: id,
	})
	log := logging.FromCtx(ctx)

	rec, err := s.duplicate(ctx, id)
	s.metrics.ConfigOperation("duplicate", resultOf(err))
	if err != nil {
		log.Debug().Err(err).Msg("duplicate failed")
		return domain.StoredConfig{}, err
	}

	log.Info().Str("copy_id", rec.ID).Str("name", rec.Name()).Msg("configuration duplicated")
	return rec, nil
}

func (s *Service) duplicate(ctx context.Context, id string) (domain.StoredConfig, error) {
	src, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.StoredConfig{}, fmt.Errorf("failed to get configuration %s: %w", id, err)
	}

	name, err := s.copyName(ctx, src.Config.Name)
	if err != nil {
		return domain.StoredConfig{}, err
	}

	cfg := src.Config.Clone()
	cfg.Name = name
	cfg, err = dockerrun.ValidateConfig(cfg)
	if err != nil {
		return domain.StoredConfig{}, err
	}
	return s.insert(ctx, cfg)
}

func (s *Service) copyName(ctx context.Context, name string) (string, error) {
	candidate := name + "-copy"
	taken, err := s.store.NameExists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to check name %q: %w", candidate, err)
	}
	if !taken {
		return candidate, nil
	}

	stamped := fmt.Sprintf("%s-copy-%d", name, s.now().UnixMilli())
	candidate = stamped
	for n := 2; n <= maxCopyAttempts; n++ {
		taken, err = s.store.NameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check name %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", stamped, n)
	}
	return "", fmt.Errorf("no free copy name for %q: %w", name, domain.ErrConfigNameTaken)
}

// Preview validates raw and renders it in both modes without storing it.
func (s *Service) Preview(_ context.Context, raw any) (domain.Preview, error) {
	cfg, err := dockerrun.Validate(raw)
	if err != nil {
		return domain.Preview{}, err
	}
	return domain.Preview{
		Compact:   s.render(cfg, dockerrun.Compact),
		Multiline: s.render(cfg, dockerrun.Multiline),
	}, nil
}

// Import parses a docker run command and stores the resulting record.
func (s *Service) Import(ctx context.Context, command string) (domain.StoredConfig, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "usecase",
		logging.FieldUseCase: "ImportConfig",
	})
	log := logging.FromCtx(ctx)

	cfg, err := dockerrun.Parse(command)
	if errors.Is(err, dockerrun.ErrNotRunCommand) {
		err = fmt.Errorf("%w: %v", domain.ErrInvalidCommand, err)
	}
	if err != nil {
		s.metrics.ConfigOperation("import", resultOf(err))
		log.Debug().Err(err).Msg("command rejected")
		return domain.StoredConfig{}, err
	}

	rec, err := s.insert(ctx, cfg)
	s.metrics.ConfigOperation("import", resultOf(err))
	if err != nil {
		return domain.StoredConfig{}, err
	}

	log.Info().Str(logging.FieldConfigID, rec.ID).Str("name", rec.Name()).Msg("configuration imported")
	return rec, nil
}

func (s *Service) insert(ctx context.Context, cfg dockerrun.Config) (domain.StoredConfig, error) {
	now := s.now().UTC()
	rec := domain.StoredConfig{
		ID:        s.newID(),
		Config:    cfg,
		Command:   s.render(cfg, dockerrun.Compact),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return domain.StoredConfig{}, fmt.Errorf("failed to store configuration %q: %w", cfg.Name, err)
	}
	return rec, nil
}

func (s *Service) render(cfg dockerrun.Config, mode dockerrun.Mode) string {
	s.metrics.RenderObserved(mode.String())
	return dockerrun.Render(cfg, mode)
}

// resultOf maps an operation error to a metrics label.
func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, dockerrun.ErrInvalidConfig), errors.Is(err, domain.ErrInvalidCommand):
		return "invalid"
	case errors.Is(err, domain.ErrConfigNameTaken):
		return "conflict"
	case errors.Is(err, domain.ErrConfigNotFound):
		return "not_found"
	}
	return "error"
}

type nopMetrics struct{}

func (nopMetrics) RenderObserved(string)          {}
func (nopMetrics) ConfigOperation(string, string) {}
func (nopMetrics) LoginAttempt(string)            {}
