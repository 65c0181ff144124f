// Package cli implements updailyctl, the operator command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"updaily/backend/config"
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	open func(opts *RootOptions) (*Env, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Env is what a command needs to talk to the database.
type Env struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Services *services.Services
}

// NewRootCommand creates the root command for updailyctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openEnv)
}

func newRootCommand(open func(opts *RootOptions) (*Env, error)) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "updailyctl",
		Short: "UpDaily operator tool",
		Long:  "Runs migrations, seeds the catalog and triggers daily jobs against the configured database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewCleanupCommand(opts))
	cmd.AddCommand(NewRotateCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openEnv loads the configuration and connects to the database.
func openEnv(opts *RootOptions) (*Env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	logger, err := utils.InitLogger(utils.LoggerConfig{Format: "console", Level: level})
	if err != nil {
		return nil, err
	}
	db, err := utils.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Env{
		Config:   cfg,
		DB:       db,
		Logger:   logger,
		Services: services.New(db, cfg, logger),
	}, nil
}

// output writes v as indented JSON or as the text produced by text.
func output(opts *RootOptions, w io.Writer, v interface{}, text func(io.Writer)) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
