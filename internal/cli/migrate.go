package cli

import (
	"context"
	"errors"
	"time"

	"talent-track/internal/config"
	"talent-track/internal/database/migration"
	dbpostgres "talent-track/internal/database/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfg.Store.Driver != config.StorePostgres {
				return errors.New("migrate requires store.driver=postgres")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			db, err := dbpostgres.Connect(ctx, rt.cfg.Database, rt.logger.Named("database"))
			if err != nil {
				return err
			}
			defer db.Close()

			r := migration.Runner{Dir: dir, Logger: rt.logger.Named("migration")}
			applied, err := r.Run(ctx, db.SQLDB())
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "read migrations from this directory instead of the embedded set")
	return cmd
}
