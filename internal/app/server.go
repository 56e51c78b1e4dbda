package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Serve listens on the configured port until ctx is cancelled, then shuts
// the HTTP server down and drains the container.
func Serve(ctx context.Context, c *Container) error {
	addr, err := ListenAddr(c.Config.App.HTTPPort)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.Start(runCtx)

	srv := New(c)
	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.Fiber.Listen(addr)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			c.Logger.Warn("shutdown error", zap.Error(err))
		}
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := c.Close(closeCtx); err != nil {
		c.Logger.Warn("cleanup error", zap.Error(err))
	}
	return serveErr
}
