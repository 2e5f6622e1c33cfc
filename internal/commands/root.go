// Package commands contains the waiwaier CLI command definitions.
package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"waiwaier/internal/config"
	"waiwaier/internal/sample"
	"waiwaier/internal/schema"
)

// app carries the loaded configuration from the root pre-run to the
// subcommands.
type app struct {
	cfg config.Config
	out io.Writer
	err io.Writer
	in  io.Reader
}

// NewRootCmd creates the root command with every subcommand registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "waiwaier",
		Short: "Export table designs as AppSheet-ready workbooks",
		Long: `waiwaier turns table designs into Excel workbooks whose header cells carry
AppSheet column notes, so that AppSheet picks up column settings on import.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	registerExportCmd(rootCmd, a)
	registerPreviewCmd(rootCmd, a)
	registerLintCmd(rootCmd, a)
	registerDDLCmd(rootCmd, a)
	registerRegistryCmd(rootCmd, a)
	registerSettingsCmd(rootCmd, a)
	registerKVCmd(rootCmd, a)
	registerServeCmd(rootCmd, a)

	return rootCmd
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyFlags(&cfg, cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	a.err = cmd.ErrOrStderr()
	a.in = cmd.InOrStdin()
	return nil
}

// project loads the configured schema. A saved settings file wins over
// settings embedded in the project.
func (a *app) project() (*schema.Project, schema.Settings, error) {
	if a.cfg.Schema == "" {
		return nil, nil, errors.New("no schema configured (use --schema)")
	}
	p, err := schema.LoadPath(a.cfg.Schema)
	if err != nil {
		return nil, nil, fmt.Errorf("load schema: %w", err)
	}
	settings := p.Settings
	if a.cfg.Settings != "" {
		s, err := schema.LoadSettings(a.cfg.Settings)
		if err != nil {
			return nil, nil, fmt.Errorf("load settings: %w", err)
		}
		if s != nil {
			settings = s
		}
	}
	return p, settings, nil
}

func (a *app) samples() (sample.Set, error) {
	if a.cfg.Samples == "" {
		return nil, nil
	}
	s, err := sample.Load(a.cfg.Samples)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	return s, nil
}
