package p4

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chmouel/p4status/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultLockTimeout bounds a single lock query.
	DefaultLockTimeout = 30 * time.Second
	// DefaultLockWorkers is the number of lock queries run at once.
	DefaultLockWorkers = 8

	lockedMarker = "*locked*"
)

// LockChecker determines whether opened files hold an exclusive lock.
//
// Each file costs one `p4 opened -a <file>` round trip, which makes lock
// detection the slowest part of a report; CheckAll spreads the queries over
// a fixed number of workers.
type LockChecker struct {
	runner  Runner
	timeout time.Duration
	workers int
	logger  *slog.Logger
}

// NewLockChecker builds a checker. Non-positive timeout or workers fall
// back to the defaults.
func NewLockChecker(runner Runner, timeout time.Duration, workers int, logger *slog.Logger) *LockChecker {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	if workers <= 0 {
		workers = DefaultLockWorkers
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LockChecker{
		runner:  runner,
		timeout: timeout,
		workers: workers,
		logger:  logger,
	}
}

// IsLocked reports whether user@client holds the lock on file. Every
// failure answers false.
func (l *LockChecker) IsLocked(ctx context.Context, file string, user, client *string) bool {
	if file == "" || user == nil || client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	out, err := l.runner.Run(ctx, []string{"opened", "-a", file})
	if err != nil {
		l.logger.Debug("lock check failed", "file", file, "err", err)
		return false
	}
	if out.ExitStatus != 0 {
		l.logger.Debug("lock check failed", "file", file, "exit", out.ExitStatus)
		return false
	}
	return lockedBy(out.Stdout, *user, *client)
}

// CheckAll returns a copy of entries with Locked filled in. The output
// order always matches the input order.
func (l *LockChecker) CheckAll(ctx context.Context, entries []models.OpenedFile) []models.OpenedFile {
	checked := make([]models.OpenedFile, len(entries))
	copy(checked, entries)

	var g errgroup.Group
	g.SetLimit(l.workers)
	for i := range checked {
		g.Go(func() error {
			e := &checked[i]
			defer func() {
				if r := recover(); r != nil {
					l.logger.Debug("lock check panicked", "file", e.File, "panic", r)
					e.Locked = false
				}
			}()
			e.Locked = l.IsLocked(ctx, e.File, e.User, e.Client)
			return nil
		})
	}
	_ = g.Wait()

	return checked
}

// lockedBy scans untagged `p4 opened` output, whose lines look like
// "//depot/a.txt#3 - edit default change (text) by alice@ws1 *locked*".
func lockedBy(output, user, client string) bool {
	owner := "by " + user + "@" + client
	for line := range strings.SplitSeq(output, "\n") {
		if strings.Contains(line, owner) && strings.Contains(line, lockedMarker) {
			return true
		}
	}
	return false
}
