package dto

import "github.com/ekingoksan/docker-cmd-studio/internal/domain"

// ConfigResponse is returned by every write on a configuration.
type ConfigResponse struct {
	Item    domain.StoredConfig `json:"item"`
	Command string              `json:"command"`
}

// NewConfigResponse wraps rec with its generated command.
func NewConfigResponse(rec domain.StoredConfig) ConfigResponse {
	return ConfigResponse{Item: rec, Command: rec.Command}
}

// ImportRequest carries docker run text to convert into a record.
type ImportRequest struct {
	Command string `json:"command"`
}
