// Package domain holds the persisted records of the application and the
// errors shared between layers.
package domain

import (
	"time"

	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

// StoredConfig is a validated container configuration as persisted, with
// the compact command that was generated from it at write time.
type StoredConfig struct {
	ID        string           `json:"id"`
	Config    dockerrun.Config `json:"config"`
	Command   string           `json:"generatedCommand"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Name is the container name of the record.
func (s StoredConfig) Name() string {
	return s.Config.Name
}

// ListQuery selects a page of configurations. Search matches
// case-insensitively against name, image and tag.
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

// ConfigPage is one page of configurations, newest first.
type ConfigPage struct {
	Items      []StoredConfig `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}

// TotalPages returns the number of pages for total rows, never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Normalize clamps the query: page to at least 1, page size to 1..maxSize with
// def used when unset.
func (q ListQuery) Normalize(def, maxSize int) ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = def
	}
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	if q.PageSize > maxSize {
		q.PageSize = maxSize
	}
	return q
}

// Offset is the number of rows to skip for the query's page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Preview holds both renders of an unsaved configuration.
type Preview struct {
	Compact   string `json:"compact"`
	Multiline string `json:"multiline"`
}
