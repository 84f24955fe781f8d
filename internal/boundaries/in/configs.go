// Package in defines the services exposed to inbound adapters.
package in

import (
	"context"

	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
)

// ConfigService manages stored container configurations. Raw inputs are
// loosely typed records (decoded JSON or YAML, or a dockerrun.Config) and
// are validated before anything is persisted.
type ConfigService interface {
	Create(ctx context.Context, raw any) (domain.StoredConfig, error)
	Get(ctx context.Context, id string) (domain.StoredConfig, error)
	Update(ctx context.Context, id string, raw any) (domain.StoredConfig, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q domain.ListQuery) (domain.ConfigPage, error)

	// Duplicate copies a record under a free "-copy" name.
	Duplicate(ctx context.Context, id string) (domain.StoredConfig, error)

	// Preview renders raw in both modes without storing it.
	Preview(ctx context.Context, raw any) (domain.Preview, error)

	// Import parses docker run text and stores the result.
	Import(ctx context.Context, command string) (domain.StoredConfig, error)
}
