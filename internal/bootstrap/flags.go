// Package bootstrap wires the p4status command line.
package bootstrap

import (
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns the flags shared by every command.
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=p4s.key=value",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log progress to stderr",
		},
		&urfavecli.StringFlag{
			Name:  "p4",
			Usage: "p4 executable to run",
		},
	}
}

// reportFlags returns the flags of the report-producing commands.
func reportFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.IntFlag{
			Name:  "limit",
			Value: 20,
			Usage: "Maximum number of changes listed per section",
		},
		&urfavecli.StringFlag{
			Name:  "format",
			Value: "json",
			Usage: "Output format: json or text",
		},
	}
}
