package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/whale/cli"
	"github.com/ardnew/whale/cli/cmd"
	"github.com/ardnew/whale/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		// Script errors were already rendered for the user.
		if errors.Is(err, cmd.ErrScript) {
			log.Debug("run failed", log.Err(err))
		} else {
			log.Error("run failed", log.Err(err))
		}

		os.Exit(1)
	}
}
