// Package cli implements weddingctl, the operator command line.
package cli

import (
	"wedding-invitation/internal/config"
	"wedding-invitation/internal/infrastructure/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global state shared by every command.
type RootOptions struct {
	LogLevel string

	// Load reads configuration; tests replace it.
	Load   func() (*config.Config, error)
	Config *config.Config
}

// NewRootCommand creates the weddingctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Load: config.Load})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "weddingctl",
		Short:         "Operate the wedding invitation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}
			if opts.LogLevel != "" {
				cfg.LogLevel = opts.LogLevel
			}
			config.SetupLogger(cfg)
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))

	return cmd
}

// openDB opens the configured database and brings the schema up to date.
func openDB(opts *RootOptions) (*gorm.DB, func(), error) {
	db, err := database.Open(opts.Config.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := database.AutoMigrate(db); err != nil {
		closeFn()
		return nil, nil, err
	}
	return db, closeFn, nil
}
