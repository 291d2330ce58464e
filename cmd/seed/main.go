// Package main wires the seed CLI: loads a route-profile catalog and
// applies it to a local database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	seedcmd "github.com/louisbranch/showbinder/internal/cmd/seed"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
	"github.com/louisbranch/showbinder/internal/platform/config"
)

func main() {
	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedcmd.Run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
}
