// Package cli implements the hiringctl command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"talent-track/internal/config"
	"talent-track/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const appName = "hiringctl"

// runtime is filled by the root pre-run hook and shared by every subcommand.
type runtime struct {
	configPath string
	v          *viper.Viper
	cfg        config.Config
	logger     *zap.Logger
}

// NewRootCommand builds a fresh command tree, so tests can run commands in isolation.
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           appName,
		Short:         "hiringctl runs and operates the talent-track recruitment service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["skip-config"] == "true" {
				return nil
			}
			return rt.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "a config file (default is talent-track.yaml in current directory)")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	root.AddCommand(
		newServeCommand(rt),
		newMigrateCommand(rt),
		newImportCommand(rt),
		newScoreCommand(rt),
		newReportCommand(rt),
		newVersionCommand(),
	)
	return root
}

func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (rt *runtime) load(cmd *cobra.Command) error {
	v, err := config.New(rt.configPath)
	if err != nil {
		return err
	}
	if err := v.BindPFlag("log.debug", cmd.Flags().Lookup("debug")); err != nil {
		return err
	}
	if err := v.BindPFlag("log.json", cmd.Flags().Lookup("json")); err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("port"); f != nil {
		if err := v.BindPFlag("app.http_port", f); err != nil {
			return err
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	rt.v = v
	rt.cfg = cfg
	rt.logger = log
	return nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
