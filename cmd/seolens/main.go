// cmd/seolens/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/internal/cli"
)

func main() {
	// First interrupt cancels the command context so queued signals can
	// drain; a second one force-exits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		stop()
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Warn().Msg("Forced shutdown")
		os.Exit(1)
	}()

	cli.Execute(ctx)
}
