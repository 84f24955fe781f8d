package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "import [command...]",
		Short: "Convert a docker run command into a configuration",
		Long: `Parse a docker run command, given as arguments or on stdin, and print
the configuration as YAML. With --save the configuration is stored.`,
		Example: `  docker-cmd-studio import 'docker run -d --name web -p 8080:80 nginx:1.25'
  pbpaste | docker-cmd-studio import --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := readInput(cmd.InOrStdin(), "-")
				if err != nil {
					return err
				}
				text = string(data)
			}

			if save {
				return importAndSave(cmd, opts, text)
			}

			cfg, err := dockerrun.Parse(text)
			if err != nil {
				if printFieldErrors(cmd.ErrOrStderr(), err) {
					return fmt.Errorf("command does not describe a valid configuration")
				}
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the configuration")
	return cmd
}

func importAndSave(cmd *cobra.Command, opts *rootOptions, text string) error {
	a, err := opts.openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Configs.Import(cmd.Context(), text)
	if err != nil {
		printFieldErrors(cmd.ErrOrStderr(), err)
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Saved %s (%s)", rec.Name(), rec.ID)
	fmt.Fprintln(cmd.OutOrStdout(), rec.Command)
	return nil
}
