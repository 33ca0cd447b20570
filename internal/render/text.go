package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/chmouel/p4status/internal/models"
	"github.com/mattn/go-runewidth"
)

const (
	placeholderNone    = "<none>"
	placeholderUnknown = "<unknown>"
	ellipsis           = "..."
	lineWidth          = 80
)

// column is one fixed-width cell of a table row. A zero width marks the
// trailing free-width column.
type column struct {
	width int
	value string
}

// ShortenMiddle fits s into maxLen characters by replacing its middle with
// "...". The remaining budget is split evenly and an odd character goes to
// the prefix. Empty input renders as "<none>".
func ShortenMiddle(s string, maxLen int) string {
	if s == "" {
		return placeholderNone
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string(runes[:max(maxLen, 0)])
	}
	budget := maxLen - len(ellipsis)
	suffix := budget / 2
	prefix := budget - suffix
	return string(runes[:prefix]) + ellipsis + string(runes[len(runes)-suffix:])
}

func valueOr(v *string, placeholder string) string {
	if v == nil || *v == "" {
		return placeholder
	}
	return *v
}

// row lays out columns separated by one space, shortening values that do
// not fit their width.
func row(indent string, cols ...column) string {
	var b strings.Builder
	b.WriteString(indent)
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(' ')
		}
		if c.width == 0 {
			b.WriteString(c.value)
			continue
		}
		b.WriteString(runewidth.FillRight(ShortenMiddle(c.value, c.width), c.width))
	}
	return strings.TrimRight(b.String(), " ")
}

type textWriter struct {
	b strings.Builder
}

func (t *textWriter) line(format string, args ...any) {
	fmt.Fprintf(&t.b, format, args...)
	t.b.WriteByte('\n')
}

func (t *textWriter) raw(s string) {
	t.b.WriteString(s)
	t.b.WriteByte('\n')
}

func (t *textWriter) separator() {
	t.raw(strings.Repeat("-", lineWidth))
}

// Text writes the human-readable report layout.
func Text(w io.Writer, rep models.Report) error {
	t := &textWriter{}
	md := rep.Metadata

	t.raw("Perforce Status Report")
	t.line("Path:      %s", md.Path)
	t.line("Server:    %s", valueOr(md.Server, placeholderUnknown))
	t.line("Client:    %s", valueOr(md.Client, placeholderNone))
	t.line("User/Host: %s @ %s", valueOr(md.User, placeholderUnknown), valueOr(md.Host, placeholderUnknown))
	t.line("When:      %s", md.GeneratedAt)
	t.separator()

	writeOpened(t, rep.OpenedFiles)
	writeConflicts(t, rep.OpenedConflicts)
	t.separator()

	t.line("PENDING CHANGELISTS touching %s", md.Path)
	writeChanges(t, rep.PendingChanges, 20)
	writeMore(t, rep.PendingChanges, false)
	t.separator()

	t.line("RECENT SUBMITTED CHANGES (limit %d)", md.Limit)
	writeChanges(t, rep.SubmittedChanges, 18)
	writeMore(t, rep.SubmittedChanges, true)
	t.separator()

	t.line("SHELVED CHANGELISTS touching %s", md.Path)
	writeChanges(t, rep.ShelvedChanges, 20)
	writeMore(t, rep.ShelvedChanges, false)
	t.separator()

	writeErrors(t, rep.Errors)

	_, err := io.WriteString(w, t.b.String())
	return err
}

func writeOpened(t *textWriter, entries []models.OpenedFile) {
	t.raw("OPENED FILES (any user/client)")
	if len(entries) == 0 {
		t.raw("  (none)")
		return
	}
	t.raw(row("", column{12, "USER"}, column{6, "ACTION"}, column{8, "CL"}, column{22, "CLIENT"}, column{4, "LOCK"}, column{0, "FILE"}))
	t.raw(row("", column{12, "----"}, column{6, "------"}, column{8, "--"}, column{22, "------"}, column{4, "----"}, column{0, "----"}))
	for _, e := range entries {
		lock := "-"
		if e.Locked {
			lock = "yes"
		}
		t.raw(row("",
			column{12, valueOr(e.User, placeholderNone)},
			column{6, valueOr(e.Action, "")},
			column{8, valueOr(e.Change, "")},
			column{22, valueOr(e.Client, placeholderNone)},
			column{4, lock},
			column{0, e.File},
		))
	}
}

func writeConflicts(t *textWriter, conflicts []models.ConflictGroup) {
	t.raw("FILES OPENED BY MULTIPLE WORKSPACES")
	if len(conflicts) == 0 {
		t.raw("  (none)")
		return
	}
	for _, c := range conflicts {
		t.raw("  " + ShortenMiddle(c.File, 60))
		for _, e := range c.Entries {
			t.raw(row("    ",
				column{16, valueOr(e.User, placeholderUnknown)},
				column{16, valueOr(e.Client, placeholderNone)},
				column{8, valueOr(e.Action, "?")},
				column{8, valueOr(e.Change, "?")},
			))
		}
	}
}

func writeChanges(t *textWriter, section models.Section[models.Change], clientWidth int) {
	if len(section.Items) == 0 {
		t.raw("  (none)")
		return
	}
	t.raw(row("", column{8, "CL"}, column{16, "USER"}, column{clientWidth, "CLIENT"}, column{25, "WHEN"}, column{0, "DESC"}))
	for _, c := range section.Items {
		t.raw(row("",
			column{8, valueOr(c.Change, placeholderNone)},
			column{16, valueOr(c.User, placeholderNone)},
			column{clientWidth, valueOr(c.Client, placeholderNone)},
			column{25, valueOr(c.TimeISO, placeholderNone)},
			column{0, c.Description},
		))
	}
}

func writeMore(t *textWriter, section models.Section[models.Change], capped bool) {
	if !section.HasMore {
		return
	}
	if capped {
		t.raw("  (limit reached, older changes may exist)")
		return
	}
	t.line("  showing %d of %d", len(section.Items), section.Total)
}

func writeErrors(t *textWriter, errs map[models.Step]models.StepError) {
	if len(errs) == 0 {
		return
	}
	t.raw("Errors:")
	for _, step := range append(append([]models.Step{}, models.Steps...), models.StepInternal) {
		e, ok := errs[step]
		if !ok {
			continue
		}
		msg := strings.Join(strings.Fields(e.Stderr), " ")
		if msg == "" {
			msg = "(no output)"
		}
		if e.Command != "" {
			t.line("  %s: exit %d: %s [%s]", step, e.Status, msg, e.Command)
		} else {
			t.line("  %s: %s", step, msg)
		}
	}
}
