package cmd

import (
	"github.com/spf13/pflag"

	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

var _ pflag.Value = (*modeValue)(nil)

// modeValue is a --mode flag accepting compact or multiline.
type modeValue struct {
	mode dockerrun.Mode
}

func (m *modeValue) String() string { return m.mode.String() }

func (m *modeValue) Set(s string) error {
	mode, err := dockerrun.ParseMode(s)
	if err != nil {
		return err
	}
	m.mode = mode
	return nil
}

func (m *modeValue) Type() string { return "compact|multiline" }
