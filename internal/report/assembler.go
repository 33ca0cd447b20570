// Package report assembles the p4status report from individual p4 queries.
//
// Each query is an independent step. A failing step is recorded in
// Report.Errors and leaves its section empty; the remaining steps still run.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chmouel/p4status/internal/models"
	"github.com/chmouel/p4status/internal/p4"
)

// MaxLockedLines bounds the locked listing.
const MaxLockedLines = 250

// generatedLayout renders UTC times with microseconds and a "+00:00" offset.
const generatedLayout = "2006-01-02T15:04:05.000000-07:00"

// ErrAssembly wraps an unexpected failure while building a report.
var ErrAssembly = errors.New("report assembly failed")

// Assembler runs the report queries against a p4 server.
type Assembler struct {
	client *p4.Client
	locks  *p4.LockChecker
	logger *slog.Logger
	now    func() time.Time
}

// NewAssembler builds an Assembler. locks may be nil to skip lock detection.
func NewAssembler(client *p4.Client, locks *p4.LockChecker, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Assembler{
		client: client,
		locks:  locks,
		logger: logger,
		now:    time.Now,
	}
}

// Run builds the report and converts a panic anywhere in assembly into
// ErrAssembly. A nil error means a report was produced, possibly with step
// errors.
func (a *Assembler) Run(ctx context.Context, pathspec string, limit int) (rep models.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("report assembly panicked", "panic", r)
			rep = models.Report{}
			err = fmt.Errorf("%w: %v", ErrAssembly, r)
		}
	}()
	return a.Generate(ctx, pathspec, limit), nil
}

// Generate issues the five report queries in order.
func (a *Assembler) Generate(ctx context.Context, pathspec string, limit int) models.Report {
	if limit < 0 {
		limit = 0
	}
	rep := models.NewReport(pathspec, limit, a.now().UTC().Format(generatedLayout))

	if info, err := a.client.Info(ctx); err != nil {
		a.fail(&rep, models.StepInfo, err)
	} else {
		rep.Metadata.ServerInfo = info
	}

	if opened, err := a.opened(ctx, pathspec); err != nil {
		a.fail(&rep, models.StepOpened, err)
	} else {
		rep.OpenedFiles = opened
		rep.OpenedConflicts = GroupConflicts(opened)
	}

	if pending, err := a.client.Changes(ctx, p4.StatusPending, -1, pathspec); err != nil {
		a.fail(&rep, models.StepPending, err)
	} else {
		rep.PendingChanges = SectionWithLimit(pending, limit)
	}

	if submitted, err := a.client.Changes(ctx, p4.StatusSubmitted, limit, pathspec); err != nil {
		a.fail(&rep, models.StepSubmitted, err)
	} else {
		rep.SubmittedChanges = CappedSection(submitted, limit)
	}

	if shelved, err := a.client.Changes(ctx, p4.StatusShelved, -1, pathspec); err != nil {
		a.fail(&rep, models.StepShelved, err)
	} else {
		rep.ShelvedChanges = SectionWithLimit(shelved, limit)
	}

	a.logger.Info("report generated",
		"path", pathspec,
		"opened", len(rep.OpenedFiles),
		"conflicts", len(rep.OpenedConflicts),
		"errors", len(rep.Errors))
	return rep
}

// Locked lists opened files under pathspec with their lock state.
func (a *Assembler) Locked(ctx context.Context, pathspec string) models.LockedListing {
	listing := models.LockedListing{Path: pathspec, Files: []models.LockedFile{}}

	opened, err := a.client.Opened(ctx, pathspec)
	if err != nil {
		stepErr := stepError(err)
		listing.Error = &stepErr
		a.logger.Warn("opened query failed", "path", pathspec, "err", err)
		return listing
	}

	listing.Total = len(opened)
	if len(opened) > MaxLockedLines {
		opened = opened[:MaxLockedLines]
		listing.Truncated = true
	}
	if a.locks != nil {
		opened = a.locks.CheckAll(ctx, opened)
	}
	for _, e := range opened {
		listing.Files = append(listing.Files, models.LockedFile{
			File:   e.File,
			Action: e.Action,
			User:   e.User,
			Client: e.Client,
			Locked: e.Locked,
		})
	}
	return listing
}

func (a *Assembler) opened(ctx context.Context, pathspec string) ([]models.OpenedFile, error) {
	opened, err := a.client.Opened(ctx, pathspec)
	if err != nil {
		return nil, err
	}
	if a.locks != nil {
		opened = a.locks.CheckAll(ctx, opened)
	}
	return opened, nil
}

func (a *Assembler) fail(rep *models.Report, step models.Step, err error) {
	a.logger.Warn("report step failed", "step", step, "err", err)
	rep.Errors[step] = stepError(err)
}

func stepError(err error) models.StepError {
	var cmdErr *p4.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.StepError()
	}
	return models.StepError{Status: models.StatusNoExit, Stderr: err.Error()}
}
