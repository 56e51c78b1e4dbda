package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"talent-track/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "hiringctl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
