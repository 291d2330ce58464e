// Package main wires the binder CLI: inspection, readiness, and lock
// operations against a local database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	bindercmd "github.com/louisbranch/showbinder/internal/cmd/binder"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
	"github.com/louisbranch/showbinder/internal/platform/config"
)

func main() {
	cfg, args, err := bindercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bindercmd.Run(ctx, cfg, args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "binder: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
}
