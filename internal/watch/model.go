// Package watch implements the full-screen, self-refreshing report view.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/p4status/internal/models"
	"github.com/chmouel/p4status/internal/render"
	"github.com/chmouel/p4status/internal/theme"
	"github.com/muesli/reflow/wrap"
)

// Refresher produces a fresh report.
type Refresher func(ctx context.Context) (models.Report, error)

type reportMsg struct {
	report models.Report
	err    error
	at     time.Time
}

// tickMsg carries the generation of the refresh that scheduled it so that
// a manual refresh supersedes a pending timer.
type tickMsg struct {
	gen int
}

// Options configures a watch Model.
type Options struct {
	Path     string
	Interval time.Duration
	Theme    *theme.Theme
}

// Model is the bubbletea model of `p4status watch`.
type Model struct {
	ctx      context.Context
	refresh  Refresher
	path     string
	interval time.Duration
	theme    *theme.Theme
	now      func() time.Time

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	report     models.Report
	hasReport  bool
	err        error
	loading    bool
	refreshes  int
	lastUpdate time.Time
	gen        int
	quitting   bool
}

// NewModel builds the model. Refreshes run with ctx.
func NewModel(ctx context.Context, refresh Refresher, opts Options) *Model {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Theme == nil {
		opts.Theme = theme.Dracula()
	}
	return &Model{
		ctx:      ctx,
		refresh:  refresh,
		path:     opts.Path,
		interval: opts.Interval,
		theme:    opts.Theme,
		now:      time.Now,
		loading:  true,
	}
}

// Init starts the first refresh.
func (m *Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m *Model) refreshCmd() tea.Cmd {
	ctx, refresh, now := m.ctx, m.refresh, m.now
	return func() tea.Msg {
		rep, err := refresh(ctx)
		return reportMsg{report: rep, err: err, at: now()}
	}
}

func (m *Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Update handles input, timer and refresh messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		bodyHeight := max(msg.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = bodyHeight
		}
		m.setContent()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.refreshCmd()
		}

	case reportMsg:
		m.loading = false
		m.refreshes++
		m.lastUpdate = msg.at
		m.err = msg.err
		if msg.err == nil {
			m.report = msg.report
			m.hasReport = true
			m.setContent()
		}
		m.gen++
		return m, m.tickCmd()

	case tickMsg:
		if msg.gen != m.gen || m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.refreshCmd()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) setContent() {
	if !m.ready || !m.hasReport {
		return
	}
	var buf bytes.Buffer
	if err := render.Text(&buf, m.report); err != nil {
		m.err = err
		return
	}
	m.viewport.SetContent(wrap.String(buf.String(), max(m.width, 1)))
}

// View renders header, report body and footer.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading Perforce status...\n"
	}
	body := m.viewport.View()
	if !m.hasReport {
		body = lipgloss.NewStyle().
			Foreground(m.theme.MutedFg).
			Height(m.viewport.Height).
			Render("Loading Perforce status...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m *Model) renderHeader() string {
	headerStyle := lipgloss.NewStyle().
		Background(m.theme.Accent).
		Foreground(m.theme.AccentFg).
		Bold(true).
		Width(m.width).
		Padding(0, 1)

	content := "p4status watch  •  " + m.path
	if m.loading {
		content += "  (refreshing)"
	}
	return headerStyle.Render(content)
}

func (m *Model) renderFooter() string {
	footerStyle := lipgloss.NewStyle().
		Foreground(m.theme.TextFg).
		Background(m.theme.BorderDim).
		Width(m.width).
		Padding(0, 1)
	keyStyle := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)

	parts := []string{
		keyStyle.Render("r") + " refresh",
		keyStyle.Render("q") + " quit",
		fmt.Sprintf("every %s", m.interval),
	}
	if !m.lastUpdate.IsZero() {
		parts = append(parts, "updated "+m.lastUpdate.Format(time.TimeOnly))
	}

	switch {
	case m.err != nil:
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Render("error: "+m.err.Error()))
	case m.hasReport && m.report.HasErrors():
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.WarnFg).Render(fmt.Sprintf("%d failed steps", len(m.report.Errors))))
	case m.hasReport:
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.SuccessFg).Render("ok"))
	}
	return footerStyle.Render(strings.Join(parts, "  "))
}
