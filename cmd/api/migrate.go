// AngelaMos | 2026
// migrate.go

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/member-portal/internal/config"
	"github.com/carterperez-dev/templates/member-portal/internal/core"
)

func NewMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				databaseURL = cfg.Database.URL
			}

			schemaVersion, err := applyMigrations(databaseURL)
			if err != nil {
				return err
			}

			cmd.Printf("schema at version %d\n", schemaVersion)
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "database URL, overrides config")

	return cmd
}

// applyMigrations brings the schema up to date. Running it against a
// current schema changes nothing.
func applyMigrations(databaseURL string) (uint, error) {
	migrator, err := core.NewMigrator(databaseURL)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := migrator.Close(); cerr != nil {
			slog.Warn("close migrator", "error", cerr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return 0, err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	return version, nil
}
