package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// handleGracefulExit cancels the analysis on SIGINT or SIGTERM so in-flight
// provider requests stop and deferred cleanup runs.
func handleGracefulExit(cancel context.CancelFunc) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGINT,
		syscall.SIGTERM)

	go func() {
		s := <-sigc
		log.Info().Msgf("got %s, exiting", s)
		cancel()
	}()
}
