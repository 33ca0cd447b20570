package models

// Step identifies one query of the report.
type Step string

// Report steps in execution order, plus the reserved catch-all.
const (
	StepInfo      Step = "info"
	StepOpened    Step = "opened"
	StepPending   Step = "pending"
	StepSubmitted Step = "submitted"
	StepShelved   Step = "shelved"

	// StepInternal records an unexpected failure of the whole assembly.
	StepInternal Step = "internal"
)

// Steps lists the regular report steps in the order they run.
var Steps = []Step{StepInfo, StepOpened, StepPending, StepSubmitted, StepShelved}

// StatusNoExit is the StepError status used when no exit code exists.
const StatusNoExit = -1

// StepError records a failed query.
type StepError struct {
	Status  int    `json:"status"`
	Stderr  string `json:"stderr"`
	Command string `json:"command"`
}

// Report is the aggregate status of a pathspec.
type Report struct {
	Metadata         Metadata           `json:"metadata"`
	OpenedFiles      []OpenedFile       `json:"opened_files"`
	OpenedConflicts  []ConflictGroup    `json:"opened_conflicts"`
	PendingChanges   Section[Change]    `json:"pending_changes"`
	SubmittedChanges Section[Change]    `json:"submitted_changes"`
	ShelvedChanges   Section[Change]    `json:"shelved_changes"`
	Errors           map[Step]StepError `json:"errors"`
}

// NewReport returns a report with every section at its zero value.
func NewReport(path string, limit int, generatedAt string) Report {
	return Report{
		Metadata: Metadata{
			Path:        path,
			Limit:       limit,
			GeneratedAt: generatedAt,
		},
		OpenedFiles:      []OpenedFile{},
		OpenedConflicts:  []ConflictGroup{},
		PendingChanges:   EmptySection[Change](),
		SubmittedChanges: EmptySection[Change](),
		ShelvedChanges:   EmptySection[Change](),
		Errors:           map[Step]StepError{},
	}
}

// FatalReport is the only output when assembly itself failed.
type FatalReport struct {
	Errors map[Step]StepError `json:"errors"`
}

// NewFatalReport builds the catch-all error document.
func NewFatalReport(message string) FatalReport {
	return FatalReport{Errors: map[Step]StepError{
		StepInternal: {Status: StatusNoExit, Stderr: message},
	}}
}

// LockedFile is one line of the locked listing.
type LockedFile struct {
	File   string  `json:"file"`
	Action *string `json:"action"`
	User   *string `json:"user"`
	Client *string `json:"client"`
	Locked bool    `json:"locked"`
}

// LockedListing is the compact opened/locked view of a pathspec.
type LockedListing struct {
	Path      string       `json:"path"`
	Files     []LockedFile `json:"files"`
	Total     int          `json:"total"`
	Truncated bool         `json:"truncated"`
	Error     *StepError   `json:"error,omitempty"`
}

// HasErrors reports whether any step failed.
func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Failed reports whether step recorded an error.
func (r Report) Failed(step Step) bool {
	_, ok := r.Errors[step]
	return ok
}
