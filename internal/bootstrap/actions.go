package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chmouel/p4status/internal/buildinfo"
	"github.com/chmouel/p4status/internal/models"
	"github.com/chmouel/p4status/internal/render"
	"github.com/chmouel/p4status/internal/report"
	"github.com/chmouel/p4status/internal/theme"
	"github.com/chmouel/p4status/internal/watch"
	urfavecli "github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var (
	runWatchFunc   = watch.Run
	isTerminalFunc = func(w io.Writer) bool {
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
)

var errNotTerminal = errors.New("watch needs an interactive terminal, use the report command instead")

func lockedCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "locked",
		Usage:     "List opened files and their lock state (text unless --format is given)",
		ArgsUsage: "[pathspec]",
		Action:    handleLockedAction,
	}
}

func watchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "watch",
		Usage:     "Show the text report full screen and refresh it periodically",
		ArgsUsage: "[pathspec]",
		Flags: []urfavecli.Flag{
			&urfavecli.DurationFlag{
				Name:  "interval",
				Usage: "Refresh interval (defaults to watch_interval from config)",
			},
		},
		Action: handleWatchAction,
	}
}

func versionCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "version",
		Usage: "Print build information",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "json",
				Usage: "Print as JSON",
			},
		},
		Action: func(_ context.Context, cmd *urfavecli.Command) error {
			info := buildinfo.Get()
			out := cmd.Root().Writer
			if cmd.Bool("json") {
				return render.JSON(out, info)
			}
			_, err := fmt.Fprintln(out, info.String())
			return err
		},
	}
}

func pathspecArg(cmd *urfavecli.Command) (string, error) {
	if cmd.Args().Len() > 1 {
		return "", fmt.Errorf("expected at most one pathspec, got %d", cmd.Args().Len())
	}
	return report.NormalizePathspec(cmd.Args().First()), nil
}

// reportOptions resolves --limit and --format, falling back to config.
func reportOptions(cmd *urfavecli.Command, env *environment) (int, render.Format, error) {
	limit := env.cfg.Limit
	if cmd.IsSet("limit") {
		limit = int(cmd.Int("limit"))
	}
	if limit < 0 {
		return 0, "", fmt.Errorf("--limit must be >= 0, got %d", limit)
	}

	formatName := env.cfg.Format
	if cmd.IsSet("format") {
		formatName = cmd.String("format")
	}
	format, ok := render.ParseFormat(formatName)
	if !ok {
		return 0, "", fmt.Errorf("unknown format %q, expected json or text", formatName)
	}
	return limit, format, nil
}

func handleReportAction(ctx context.Context, cmd *urfavecli.Command) error {
	pathspec, err := pathspecArg(cmd)
	if err != nil {
		return err
	}
	env, err := setupEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	limit, format, err := reportOptions(cmd, env)
	if err != nil {
		return err
	}
	if err := env.requireBinary(); err != nil {
		return err
	}

	rep, err := env.assembler().Run(ctx, pathspec, limit)
	if err != nil {
		env.logger.Error("report failed", "err", err)
		return env.fatal(err.Error())
	}

	if format == render.FormatText {
		return render.Text(env.stdout, rep)
	}
	return render.JSON(env.stdout, rep)
}

func handleLockedAction(ctx context.Context, cmd *urfavecli.Command) error {
	pathspec, err := pathspecArg(cmd)
	if err != nil {
		return err
	}
	env, err := setupEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	format := render.FormatText
	if cmd.IsSet("format") {
		if _, format, err = reportOptions(cmd, env); err != nil {
			return err
		}
	}
	if err := env.requireBinary(); err != nil {
		return err
	}

	listing := env.assembler().Locked(ctx, pathspec)
	if format == render.FormatJSON {
		return render.JSON(env.stdout, listing)
	}
	return render.Locked(env.stdout, listing)
}

func handleWatchAction(ctx context.Context, cmd *urfavecli.Command) error {
	pathspec, err := pathspecArg(cmd)
	if err != nil {
		return err
	}
	env, err := setupEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	limit, _, err := reportOptions(cmd, env)
	if err != nil {
		return err
	}
	if !isTerminalFunc(env.stdout) {
		return errNotTerminal
	}
	if err := env.requireBinary(); err != nil {
		return err
	}

	interval := env.cfg.WatchInterval
	if cmd.IsSet("interval") {
		interval = cmd.Duration("interval")
	}
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", interval)
	}

	assembler := env.assembler()
	return runWatchFunc(ctx, func(ctx context.Context) (models.Report, error) {
		return assembler.Run(ctx, pathspec, limit)
	}, watch.Options{
		Path:     pathspec,
		Interval: interval,
		Theme:    theme.GetTheme(env.cfg.Theme),
	})
}
