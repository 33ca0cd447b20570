// Package main is the entry point for the p4status command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chmouel/p4status/internal/bootstrap"
	"github.com/chmouel/p4status/internal/buildinfo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := bootstrap.Run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
