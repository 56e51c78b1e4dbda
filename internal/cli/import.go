package cli

import (
	"context"
	"encoding/json"
	"time"

	"talent-track/internal/app"
	"talent-track/internal/ingest"

	"github.com/spf13/cobra"
)

func newImportCommand(rt *runtime) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load jobs and applications from a YAML or JSON fixture",
		Long: `Load jobs and applications from a fixture file into the configured store.

Applications without a status are submitted; failing mandatory checks land
them in manual review. Applications with a status are stored as they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batches, err := ingest.LoadFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := app.NewContainer(ctx, rt.cfg, rt.logger, app.Options{Migrate: true})
			if err != nil {
				return err
			}
			c.Start(ctx)
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				_ = c.Close(closeCtx)
			}()

			sum, err := c.Service.Import(ctx, batches, actor)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "import", "actor recorded in the audit trail")
	return cmd
}
