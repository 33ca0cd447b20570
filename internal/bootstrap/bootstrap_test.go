package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/p4status/internal/buildinfo"
	"github.com/chmouel/p4status/internal/config"
	"github.com/chmouel/p4status/internal/models"
	"github.com/chmouel/p4status/internal/p4"
	"github.com/chmouel/p4status/internal/p4/p4test"
	"github.com/chmouel/p4status/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infoOut = "... userName alice\n... clientName ws1\n... clientHost build-01\n... serverAddress perforce:1666\n"

const openedOut = `... depotFile //depot/a.txt
... action edit
... change default
... user alice
... client ws1
... depotFile //depot/a.txt
... action edit
... change 14
... user carol
... client ws3
`

const changesOut = `... change 101
... time 1700000000
... user alice
... client ws1
... desc Fix bug
`

type fakeP4 struct {
	*p4test.Runner
	availErr error
}

func (f fakeP4) Available() error { return f.availErr }

func scriptedRunner(path string, limit string) *p4test.Runner {
	return p4test.NewRunner().
		On(p4test.Response{Stdout: infoOut}, "-ztag", "info").
		On(p4test.Response{Stdout: openedOut}, "-ztag", "opened", "-a", path).
		On(p4test.Response{Stdout: "//depot/a.txt#1 - edit default change (text) by alice@ws1 *locked*\n"}, "opened", "-a", "//depot/a.txt").
		On(p4test.Response{Stdout: changesOut}, "-ztag", "changes", "-s", "pending", path).
		On(p4test.Response{Stdout: changesOut}, "-ztag", "changes", "-s", "submitted", "-m", limit, path).
		On(p4test.Response{}, "-ztag", "changes", "-s", "shelved", path)
}

// harness isolates config lookup and replaces the p4 binary.
type harness struct {
	runner *p4test.Runner
	avail  error
	cfg    *config.AppConfig
}

func newHarness(t *testing.T, runner *p4test.Runner) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	h := &harness{runner: runner}
	orig := newRunnerFunc
	newRunnerFunc = func(cfg *config.AppConfig, _ *slog.Logger) p4Runner {
		h.cfg = cfg
		return fakeP4{Runner: h.runner, availErr: h.avail}
	}
	t.Cleanup(func() { newRunnerFunc = orig })
	return h
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), append([]string{"p4status"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func joinedCalls(r *p4test.Runner) []string {
	var out []string
	for _, c := range r.Calls() {
		out = append(out, strings.Join(c, " "))
	}
	return out
}

func TestReportJSONDefaults(t *testing.T) {
	h := newHarness(t, scriptedRunner("//...", "20"))

	code, stdout, stderr := run()
	require.Equal(t, 0, code, stderr)

	var rep models.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, "//...", rep.Metadata.Path)
	assert.Equal(t, 20, rep.Metadata.Limit)
	assert.Equal(t, "alice", *rep.Metadata.User)
	require.Len(t, rep.OpenedFiles, 2)
	assert.True(t, rep.OpenedFiles[0].Locked)
	require.Len(t, rep.OpenedConflicts, 1)
	assert.Equal(t, "Fix bug", rep.PendingChanges.Items[0].Description)
	assert.Empty(t, rep.Errors)

	assert.Contains(t, joinedCalls(h.runner), "-ztag changes -s submitted -m 20 //...")
	assert.Equal(t, "p4", h.cfg.P4Path)
}

func TestReportPathspecAndText(t *testing.T) {
	newHarness(t, scriptedRunner("//depot/proj/...", "5"))

	code, stdout, stderr := run("--format", "text", "--limit", "5", "//depot/proj/")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "Perforce Status Report\n"))
	assert.Contains(t, stdout, "Path:      //depot/proj/...\n")
	assert.Contains(t, stdout, "RECENT SUBMITTED CHANGES (limit 5)")
}

func TestReportStepFailureStillSucceeds(t *testing.T) {
	runner := scriptedRunner("//...", "20").
		On(p4test.Response{ExitStatus: 1, Stderr: "Perforce password (P4PASSWD) invalid or unset.\n"}, "-ztag", "changes", "-s", "shelved", "//...")
	newHarness(t, runner)

	code, stdout, _ := run()
	require.Equal(t, 0, code)

	var rep models.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	require.Contains(t, rep.Errors, models.StepShelved)
	assert.Equal(t, 1, rep.Errors[models.StepShelved].Status)
	assert.Equal(t, "Perforce password (P4PASSWD) invalid or unset.", rep.Errors[models.StepShelved].Stderr)
	assert.Equal(t, "p4 -ztag changes -s shelved //...", rep.Errors[models.StepShelved].Command)
}

func TestReportMissingBinary(t *testing.T) {
	h := newHarness(t, p4test.NewRunner())
	h.avail = p4.ErrNotFound

	code, stdout, _ := run("--format", "text")
	assert.Equal(t, 1, code)
	assert.JSONEq(t, `{"errors":{"internal":{"status":-1,"stderr":"p4 not found or not accessible","command":""}}}`, stdout)
	assert.Empty(t, h.runner.Calls())
}

func TestReportInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "negative limit", args: []string{"--limit=-1"}, want: "--limit must be >= 0"},
		{name: "unknown format", args: []string{"--format", "yaml"}, want: "unknown format"},
		{name: "two pathspecs", args: []string{"//a/...", "//b/..."}, want: "at most one pathspec"},
		{name: "bad override", args: []string{"-C", "limit=3"}, want: "error applying config overrides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, p4test.NewRunner())
			code, stdout, stderr := run(tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.want)
			assert.Empty(t, h.runner.Calls())
		})
	}
}

func TestReportConfigAndOverrides(t *testing.T) {
	h := newHarness(t, scriptedRunner("//...", "3"))
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "p4status.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("limit: 7\nformat: text\np4_args: -p perforce:1666\n"), 0o600))

	code, stdout, stderr := run("--config-file", cfgPath, "-C", "p4s.limit=3", "--p4", "/opt/p4")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "RECENT SUBMITTED CHANGES (limit 3)", "format from file, limit from override")
	assert.Equal(t, "/opt/p4", h.cfg.P4Path)
	assert.Equal(t, []string{"-p", "perforce:1666"}, h.cfg.P4Args)
}

func TestReportBrokenConfigFallsBack(t *testing.T) {
	newHarness(t, scriptedRunner("//...", "20"))
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("limit: [\n"), 0o600))

	code, stdout, stderr := run("--config-file", cfgPath)
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Error loading config")
	assert.Contains(t, stdout, `"limit": 20`)
}

func TestReportDebugLog(t *testing.T) {
	newHarness(t, scriptedRunner("//...", "20"))
	logPath := filepath.Join(t.TempDir(), "debug.log")

	code, _, stderr := run("--debug-log", logPath)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "report generated")
	assert.NotContains(t, stderr, "report generated", "info stays off stderr without --verbose")
}

func TestReportVerbose(t *testing.T) {
	newHarness(t, scriptedRunner("//...", "20"))

	code, _, stderr := run("-v")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "report generated")
}

func TestLockedCommand(t *testing.T) {
	newHarness(t, scriptedRunner("//depot/...", "20"))

	code, stdout, stderr := run("locked", "//depot")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "//depot/a.txt - edit by alice (ws1) *locked*\n//depot/a.txt - edit by carol (ws3)\n", stdout)
}

func TestLockedCommandJSON(t *testing.T) {
	newHarness(t, scriptedRunner("//...", "20"))

	code, stdout, _ := run("locked", "--format", "json")
	require.Equal(t, 0, code)

	var listing models.LockedListing
	require.NoError(t, json.Unmarshal([]byte(stdout), &listing))
	assert.Equal(t, "//...", listing.Path)
	assert.Equal(t, 2, listing.Total)
	assert.False(t, listing.Truncated)
	assert.Nil(t, listing.Error)
}

func TestLockedCommandMissingBinary(t *testing.T) {
	h := newHarness(t, p4test.NewRunner())
	h.avail = p4.ErrNotFound

	code, stdout, _ := run("locked")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, `"internal"`)
}

func stubWatch(t *testing.T, fn func(context.Context, watch.Refresher, watch.Options, ...tea.ProgramOption) error) {
	t.Helper()
	origRun, origTerm := runWatchFunc, isTerminalFunc
	runWatchFunc = fn
	isTerminalFunc = func(io.Writer) bool { return true }
	t.Cleanup(func() {
		runWatchFunc = origRun
		isTerminalFunc = origTerm
	})
}

func TestWatchCommand(t *testing.T) {
	newHarness(t, scriptedRunner("//depot/...", "4"))

	var gotOpts watch.Options
	var gotReport models.Report
	stubWatch(t, func(ctx context.Context, refresh watch.Refresher, opts watch.Options, _ ...tea.ProgramOption) error {
		gotOpts = opts
		rep, err := refresh(ctx)
		gotReport = rep
		return err
	})

	code, _, stderr := run("watch", "--interval", "5s", "--limit", "4", "-C", "p4s.theme=nord", "//depot/...")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "//depot/...", gotOpts.Path)
	assert.Equal(t, 5*time.Second, gotOpts.Interval)
	assert.NotNil(t, gotOpts.Theme)
	assert.Equal(t, 4, gotReport.Metadata.Limit)
}

func TestWatchCommandRejectsBadInterval(t *testing.T) {
	newHarness(t, scriptedRunner("//...", "20"))
	stubWatch(t, func(context.Context, watch.Refresher, watch.Options, ...tea.ProgramOption) error {
		t.Fatal("watch must not start")
		return nil
	})

	code, _, stderr := run("watch", "--interval", "0s")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--interval must be positive")
}

func TestWatchCommandNeedsTerminal(t *testing.T) {
	h := newHarness(t, scriptedRunner("//...", "20"))

	code, _, stderr := run("watch")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "interactive terminal")
	assert.Empty(t, h.runner.Calls())
}

func TestVersionCommand(t *testing.T) {
	buildinfo.Set("v1.2.3", "abcdef", "2026-10-01", "test")
	t.Cleanup(func() { buildinfo.Set("dev", "none", "unknown", "unknown") })

	code, stdout, _ := run("version")
	require.Equal(t, 0, code)
	assert.Equal(t, "p4status v1.2.3 (commit abcdef, built 2026-10-01 by test)\n", stdout)

	code, stdout, _ = run("version", "--json")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"version":"v1.2.3","commit":"abcdef","date":"2026-10-01","built_by":"test"}`, stdout)
}
