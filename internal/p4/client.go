package p4

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/chmouel/p4status/internal/models"
)

// Changelist states accepted by `p4 changes -s`.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusShelved   = "shelved"
)

// Client issues the tagged queries used to build a status report.
type Client struct {
	runner Runner
	logger *slog.Logger
}

// NewClient constructs a Client on top of runner.
func NewClient(runner Runner, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{runner: runner, logger: logger}
}

// Runner returns the underlying command runner.
func (c *Client) Runner() Runner {
	return c.runner
}

// tagged runs a data query in -ztag mode.
func (c *Client) tagged(ctx context.Context, args ...string) (string, error) {
	return run(ctx, c.runner, append([]string{"-ztag"}, args...))
}

// Info returns the server connection details.
func (c *Client) Info(ctx context.Context) (models.ServerInfo, error) {
	out, err := c.tagged(ctx, "info")
	if err != nil {
		return models.ServerInfo{}, err
	}
	return ParseInfo(out), nil
}

// Opened lists files opened by any user or client under pathspec.
// Locked is left false; see LockChecker.
func (c *Client) Opened(ctx context.Context, pathspec string) ([]models.OpenedFile, error) {
	out, err := c.tagged(ctx, "opened", "-a", pathspec)
	if err != nil {
		return nil, err
	}
	return ParseOpened(out), nil
}

// Changes lists changelists in the given state. A max of zero or more is
// passed to the server as -m; a negative max fetches everything.
func (c *Client) Changes(ctx context.Context, status string, maxResults int, pathspec string) ([]models.Change, error) {
	args := []string{"changes", "-s", status}
	if maxResults >= 0 {
		args = append(args, "-m", strconv.Itoa(maxResults))
	}
	args = append(args, pathspec)

	out, err := c.tagged(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseChanges(out), nil
}
