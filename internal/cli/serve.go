package cli

import (
	"talent-track/internal/app"
	"talent-track/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, websocket stream and notification workers",
		Long: `Start the recruitment HTTP server.

Endpoints live under /api/v1; /health, /metrics and /ws/pipeline sit at the root.
The selection threshold is reloaded when the config file changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := app.NewContainer(ctx, rt.cfg, rt.logger, app.Options{Migrate: true})
			if err != nil {
				return err
			}
			config.Watch(rt.v, rt.logger.Named("config"), c.ApplyConfig)

			rt.logger.Info("starting",
				zap.String("app", rt.cfg.App.AppName),
				zap.String("version", Version),
				zap.String("store", rt.cfg.Store.Driver),
				zap.String("notifier", rt.cfg.Notification.Driver),
				zap.Int("threshold", rt.cfg.Selection.Threshold),
			)
			return app.Serve(ctx, c)
		},
	}
	cmd.Flags().StringP("port", "p", "", "port to listen on (default from config)")
	return cmd
}
