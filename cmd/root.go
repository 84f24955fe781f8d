// Package cmd implements the docker-cmd-studio command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ekingoksan/docker-cmd-studio/internal/app"
	"github.com/ekingoksan/docker-cmd-studio/internal/config"
	"github.com/ekingoksan/docker-cmd-studio/internal/logging"
)

// Build information, set from main.
var (
	BuildVersion = "dev"
	BuildCommit  = "none"
	BuildDate    = "unknown"
)

type rootOptions struct {
	cfgFile  string
	logLevel string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Build, store and share docker run commands",
		Long: `docker-cmd-studio keeps container configurations and turns them into
ready-to-paste docker run commands, compact or one flag group per line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./docker-cmd-studio.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		newServeCmd(opts),
		newRenderCmd(),
		newImportCmd(opts),
		newConfigsCmd(opts),
		newUserCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI with the given build information.
func Execute(version, commit, date string) error {
	if version != "" {
		BuildVersion = version
	}
	if commit != "" {
		BuildCommit = commit
	}
	if date != "" {
		BuildDate = date
	}
	return NewRootCmd().ExecuteContext(context.Background())
}

// load reads and validates the configuration and sets up logging.
func (o *rootOptions) load(requireSecret bool) (*config.Config, zerolog.Logger, error) {
	v, err := config.NewViper(o.cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if o.logLevel != "" {
		v.Set("logging.level", o.logLevel)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(requireSecret); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug().Str("file", used).Msg("using config file")
	}
	return cfg, log, nil
}

// openApp loads the configuration and opens the application. The caller
// closes it.
func (o *rootOptions) openApp(ctx context.Context, requireSecret bool) (*app.App, error) {
	cfg, log, err := o.load(requireSecret)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, log)
}
