package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

func newRenderCmd() *cobra.Command {
	var (
		file string
		mode modeValue
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a configuration file as a docker run command",
		Long: `Read a container configuration from a YAML or JSON file (or "-" for
stdin) and print the docker run command it describes.

Tags must be strings. In YAML quote numeric tags (tag: "1.25"), otherwise
they are read as numbers and rejected.`,
		Example: `  docker-cmd-studio render -f web.yaml
  docker-cmd-studio render -f web.json --mode multiline
  printf 'name: web\nimage: nginx\ntag: "1.25"\n' | docker-cmd-studio render -f -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			cfg, err := decodeRecord(file, data)
			if err != nil {
				if printFieldErrors(cmd.ErrOrStderr(), err) {
					return fmt.Errorf("%s is not a valid configuration", file)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), dockerrun.Render(cfg, mode.mode))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "configuration file (.yaml, .yml or .json), - for stdin")
	cmd.Flags().Var(&mode, "mode", "output layout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// decodeRecord validates data as JSON for .json files and as YAML
// otherwise.
func decodeRecord(path string, data []byte) (dockerrun.Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return dockerrun.ValidateJSON(data)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return dockerrun.Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return dockerrun.Validate(raw)
}
