package bootstrap

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/chmouel/p4status/internal/config"
	"github.com/chmouel/p4status/internal/log"
	"github.com/chmouel/p4status/internal/models"
	"github.com/chmouel/p4status/internal/p4"
	"github.com/chmouel/p4status/internal/render"
	"github.com/chmouel/p4status/internal/report"
	urfavecli "github.com/urfave/cli/v3"
)

// p4Runner is a p4.Runner that can tell whether its binary exists.
type p4Runner interface {
	p4.Runner
	Available() error
}

var (
	loadCLIConfigFunc = loadCLIConfig
	newRunnerFunc     = func(cfg *config.AppConfig, logger *slog.Logger) p4Runner {
		return p4.NewExecRunner(cfg.P4Path, cfg.P4Args, logger)
	}
)

// environment is what every action needs once flags and config are merged.
type environment struct {
	cfg    *config.AppConfig
	logger *log.Logger
	runner p4Runner
	stdout io.Writer
	stderr io.Writer
}

func (e *environment) close() {
	if err := e.logger.Close(); err != nil {
		fmt.Fprintf(e.stderr, "Error closing debug log: %v\n", err)
	}
}

// loadCLIConfig loads the config file and applies CLI overrides. A broken
// config file is reported and replaced by the defaults.
func loadCLIConfig(stderr io.Writer, configFile string, configOverrides []string) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if len(configOverrides) > 0 {
		if err := cfg.ApplyCLIOverrides(configOverrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}

	return cfg, nil
}

func setupEnvironment(cmd *urfavecli.Command) (*environment, error) {
	root := cmd.Root()
	stdout, stderr := root.Writer, root.ErrWriter

	cfg, err := loadCLIConfigFunc(stderr, cmd.String("config-file"), cmd.StringSlice("config"))
	if err != nil {
		return nil, err
	}

	if p4Path := cmd.String("p4"); p4Path != "" {
		cfg.P4Path = p4Path
	}
	if debugLog := cmd.String("debug-log"); debugLog != "" {
		cfg.DebugLog = debugLog
	}

	level, levelErr := log.ParseLevel(cfg.LogLevel, slog.LevelWarn)
	if cmd.Bool("verbose") && level > slog.LevelInfo {
		level = slog.LevelInfo
	}

	opts := log.Options{Level: level, Stderr: stderr}
	if cfg.DebugLog != "" {
		path, err := config.ExpandPath(cfg.DebugLog)
		if err != nil {
			path = cfg.DebugLog
		}
		opts.DebugFile = path
	}
	logger, err := log.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening debug log file %q: %v\n", opts.DebugFile, err)
		opts.DebugFile = ""
		logger, _ = log.New(opts)
	}
	if levelErr != nil {
		logger.Warn("invalid log_level, using warn", "err", levelErr)
	}

	return &environment{
		cfg:    cfg,
		logger: logger,
		runner: newRunnerFunc(cfg, logger.Logger),
		stdout: stdout,
		stderr: stderr,
	}, nil
}

func (e *environment) assembler() *report.Assembler {
	client := p4.NewClient(e.runner, e.logger.Logger)
	locks := p4.NewLockChecker(e.runner, e.cfg.LockTimeout, e.cfg.LockWorkers, e.logger.Logger)
	return report.NewAssembler(client, locks, e.logger.Logger)
}

// requireBinary prints the fatal document and fails when p4 is missing.
func (e *environment) requireBinary() error {
	if err := e.runner.Available(); err != nil {
		e.logger.Error("p4 unavailable", "err", err)
		return e.fatal(err.Error())
	}
	return nil
}

func (e *environment) fatal(message string) error {
	if err := render.JSON(e.stdout, models.NewFatalReport(message)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return urfavecli.Exit("", 1)
}
