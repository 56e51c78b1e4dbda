package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Watch reloads the config file on change and hands every valid result to
// apply. Invalid edits are logged and ignored. It is a no-op when no config
// file was loaded.
func Watch(v *viper.Viper, logger *zap.Logger, apply func(Config)) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(v)
		if err != nil {
			logger.Warn("config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("config reloaded",
			zap.String("file", e.Name),
			zap.Int("selection_threshold", cfg.Selection.Threshold),
		)
		apply(cfg)
	})
	v.WatchConfig()
}
