package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/launchsync/engine"
	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launch"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the SQLite cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Database.Backend != "sqlite" {
				return fmt.Errorf("migrate requires the sqlite backend, got %q", cfg.Database.Backend)
			}
			db, err := engine.OpenFile(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			before, _, err := launch.SchemaVersion(db)
			if err != nil {
				return err
			}
			if err := launch.EnsureSchema(db); err != nil {
				return err
			}
			after, dirty, err := launch.SchemaVersion(db)
			if err != nil {
				return err
			}
			logger.Info("schema migrated", logger.KeyPath, cfg.Database.Path, logger.KeySchemaVer, after)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d -> %d (dirty=%t)\n", before, after, dirty)
			return nil
		},
	}
}
