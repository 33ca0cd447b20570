package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chmouel/p4status/internal/buildinfo"
	urfavecli "github.com/urfave/cli/v3"
)

// NewApp builds the p4status command tree.
func NewApp(stdout, stderr io.Writer) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "p4status",
		Usage:                 "Report opened, locked, pending, submitted and shelved work on a Perforce path",
		Version:               buildinfo.Version(),
		ArgsUsage:             "[pathspec]",
		HideVersion:           true, // -v is --verbose; see the version command
		EnableShellCompletion: true,
		Writer:                stdout,
		ErrWriter:             stderr,
		Flags:                 append(globalFlags(), reportFlags()...),
		Action:                handleReportAction,
		ShellComplete:         shellComplete,
		Commands: []*urfavecli.Command{
			lockedCommand(),
			watchCommand(),
			versionCommand(),
		},
		// Exit codes are mapped by Run.
		ExitErrHandler: func(context.Context, *urfavecli.Command, error) {},
	}
}

// Run executes args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := NewApp(stdout, stderr).Run(ctx, args); err != nil {
		var exitErr urfavecli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := exitErr.Error(); msg != "" {
				fmt.Fprintln(stderr, msg)
			}
			return exitErr.ExitCode()
		}
		fmt.Fprintf(stderr, "p4status: %v\n", err)
		return 1
	}
	return 0
}
