package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/chmouel/p4status/internal/theme"
	urfavecli "github.com/urfave/cli/v3"
)

const (
	completionFlag = "--generate-shell-completion"
	overridePrefix = "p4s."
)

var configKeys = []string{
	"p4_path", "p4_args", "limit", "format", "lock_timeout", "lock_workers",
	"debug_log", "log_level", "watch_interval", "theme",
}

func shellComplete(_ context.Context, cmd *urfavecli.Command) {
	writeCompletions(cmd.Root().Writer, cmd, os.Args)
}

// writeCompletions prints candidates for the last word of args: config
// keys and values after --config, otherwise subcommands and flags.
func writeCompletions(w io.Writer, cmd *urfavecli.Command, args []string) {
	args = slices.DeleteFunc(slices.Clone(args), func(a string) bool { return a == completionFlag })
	lastArg, prevArg := "", ""
	if n := len(args); n > 0 {
		lastArg = args[n-1]
		if n > 1 {
			prevArg = args[n-2]
		}
	}

	switch {
	case lastArg == "--config" || lastArg == "-C":
		printLines(w, suggestConfigKeys(""))
		return
	case prevArg == "--config" || prevArg == "-C":
		word := strings.TrimPrefix(lastArg, overridePrefix)
		if key, value, ok := strings.Cut(word, "="); ok {
			for _, v := range suggestConfigValues(key) {
				if strings.HasPrefix(v, value) {
					fmt.Fprintf(w, "%s%s=%s\n", overridePrefix, key, v)
				}
			}
			return
		}
		printLines(w, suggestConfigKeys(word))
		return
	}

	for _, sub := range cmd.Commands {
		if !sub.Hidden {
			fmt.Fprintln(w, sub.Name)
		}
	}
	outputFlags(w, cmd, lastArg)
}

// outputFlags prints flags matching the given prefix in completion format.
func outputFlags(w io.Writer, cmd *urfavecli.Command, prefix string) {
	if !strings.HasPrefix(prefix, "-") {
		prefix = ""
	}
	for _, flag := range cmd.Flags {
		name := flag.Names()[0]
		flagPrefix := "--"
		if len(name) == 1 {
			flagPrefix = "-"
		}
		fullFlag := flagPrefix + name
		if !strings.HasPrefix(fullFlag, prefix) {
			continue
		}
		usage := ""
		if df, ok := flag.(urfavecli.DocGenerationFlag); ok {
			usage = df.GetUsage()
		}
		if usage != "" {
			fmt.Fprintf(w, "%s:%s\n", fullFlag, usage)
		} else {
			fmt.Fprintln(w, fullFlag)
		}
	}
}

// suggestConfigKeys returns config key suggestions matching the prefix.
// Returns suggestions in the format "p4s.key=" for completion.
func suggestConfigKeys(prefix string) []string {
	var matches []string
	for _, key := range configKeys {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			matches = append(matches, overridePrefix+key+"=")
		}
	}
	return matches
}

// suggestConfigValues returns value suggestions for a given config key.
func suggestConfigValues(key string) []string {
	switch key {
	case "format":
		return []string{"json", "text"}
	case "log_level":
		return []string{"debug", "info", "warn", "error"}
	case "theme":
		return theme.AvailableThemes()
	default:
		return nil
	}
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
