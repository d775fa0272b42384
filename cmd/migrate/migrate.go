// Package migrate implements the migrate command: apply or roll back the
// database schema.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/lead-harvester/internal/config"
	"github.com/jonesrussell/lead-harvester/internal/database"
)

// Command returns the migrate command.
func Command() *cobra.Command {
	var (
		path  string
		steps int
	)

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			dbCfg := database.Config{
				Host:     cfg.Database.Host,
				Port:     cfg.Database.Port,
				User:     cfg.Database.User,
				Password: cfg.Database.Password,
				Database: cfg.Database.Database,
				SSLMode:  cfg.Database.SSLMode,
			}

			switch args[0] {
			case "up":
				if err := database.RunMigrations(dbCfg, path); err != nil {
					return err
				}
				fmt.Println("Migrations applied")
			case "down":
				if err := database.MigrateDown(dbCfg, path, steps); err != nil {
					return err
				}
				fmt.Println("Migrations rolled back")
			default:
				return fmt.Errorf("invalid direction %q (must be up or down)", args[0])
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", database.DefaultMigrationsPath, "migrations directory")
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	return cmd
}
