package admin

import (
	"fmt"

	"github.com/linsalefe/pos-plataform/internal/config"
	"github.com/linsalefe/pos-plataform/internal/database"
	"github.com/linsalefe/pos-plataform/internal/logging"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			defer logging.Setup(logging.Config{Path: cfg.LogPath, Level: cfg.LogLevel}).Close()

			dir, _ := cmd.Flags().GetString("migrations")
			return database.Migrate(cfg.DatabaseURL, dir)
		},
	}

	cmd.Flags().String("migrations", "migrations", "Directory holding the SQL migrations")

	return cmd
}
