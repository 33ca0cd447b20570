package p4

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/chmouel/p4status/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunnerCapturesStreams(t *testing.T) {
	requireShell(t)
	runner := NewExecRunner("sh", nil, nil)

	out, err := runner.Run(context.Background(), []string{"-c", "echo out; echo err >&2; exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitStatus)
	assert.Equal(t, "out\n", out.Stdout)
	assert.Equal(t, "err\n", out.Stderr)
	assert.Equal(t, "sh -c echo out; echo err >&2; exit 3", out.Command)
}

func TestExecRunnerGlobalArgs(t *testing.T) {
	requireShell(t)
	runner := NewExecRunner("sh", []string{"-c", `echo "$0 $1"`}, nil)

	out, err := runner.Run(context.Background(), []string{"-ztag", "info"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitStatus)
	assert.Equal(t, "-ztag info\n", out.Stdout)
}

func TestExecRunnerNotFound(t *testing.T) {
	runner := NewExecRunner("p4status-no-such-binary", nil, nil)

	_, err := runner.Run(context.Background(), []string{"info"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecRunnerContextCancelled(t *testing.T) {
	requireShell(t)
	runner := NewExecRunner("sh", nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, []string{"-c", "sleep 5"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecRunnerAvailable(t *testing.T) {
	orig := LookupPath
	t.Cleanup(func() { LookupPath = orig })

	LookupPath = func(string) (string, error) { return "/usr/bin/p4", nil }
	assert.NoError(t, NewExecRunner("", nil, nil).Available())

	LookupPath = func(string) (string, error) { return "", exec.ErrNotFound }
	err := NewExecRunner("", nil, nil).Available()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewExecRunnerDefaults(t *testing.T) {
	runner := NewExecRunner("  ", []string{"-p", "p4:1666"}, nil)
	assert.Equal(t, DefaultBinary, runner.Path())
	assert.Equal(t, "p4 -p p4:1666 -ztag info", runner.CommandLine([]string{"-ztag", "info"}))
}

func TestRunCommandErrors(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]Output{
			"-ztag info": {Stdout: "... userName alice\n"},
			"-ztag bad":  {ExitStatus: 1, Stderr: "  Perforce password (P4PASSWD) invalid or unset.\n"},
		},
		errs: map[string]error{"-ztag gone": errors.New("boom")},
	}

	out, err := run(context.Background(), runner, []string{"-ztag", "info"})
	require.NoError(t, err)
	assert.Equal(t, "... userName alice\n", out)

	_, err = run(context.Background(), runner, []string{"-ztag", "bad"})
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, models.StepError{
		Status:  1,
		Stderr:  "Perforce password (P4PASSWD) invalid or unset.",
		Command: "p4 -ztag bad",
	}, cmdErr.StepError())
	assert.Contains(t, cmdErr.Error(), "exit 1")

	_, err = run(context.Background(), runner, []string{"-ztag", "gone"})
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, models.StatusNoExit, cmdErr.Status)
	assert.Equal(t, "boom", cmdErr.Stderr)
	assert.EqualError(t, errors.Unwrap(cmdErr), "boom")
}

func TestClientQueries(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]Output{
			"-ztag info":                                  {Stdout: "... serverAddress p4:1666\n"},
			"-ztag opened -a //depot/...":                 {Stdout: "... depotFile //depot/a.txt\n... user alice\n"},
			"-ztag changes -s submitted -m 5 //depot/...": {Stdout: "... change 9\n... change 8\n"},
			"-ztag changes -s pending //depot/...":        {Stdout: "... change 10\n"},
		},
	}
	client := NewClient(runner, nil)
	ctx := context.Background()

	info, err := client.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p4:1666", *info.Server)

	opened, err := client.Opened(ctx, "//depot/...")
	require.NoError(t, err)
	require.Len(t, opened, 1)
	assert.Equal(t, "//depot/a.txt", opened[0].File)

	submitted, err := client.Changes(ctx, StatusSubmitted, 5, "//depot/...")
	require.NoError(t, err)
	assert.Len(t, submitted, 2)

	pending, err := client.Changes(ctx, StatusPending, -1, "//depot/...")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = client.Changes(ctx, StatusShelved, -1, "//depot/...")
	assert.Error(t, err)
}
