// Package ui renders terminal progress for multi-file runs.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kwarg/internal/pipeline"
)

// stageWeight is how far through a file the run is once a stage starts.
var stageWeight = map[pipeline.Stage]float64{
	pipeline.StageLoad:   0.1,
	pipeline.StageExpand: 0.5,
	pipeline.StageWrite:  0.9,
}

var stageVerb = map[pipeline.Stage]string{
	pipeline.StageLoad:   "loading",
	pipeline.StageExpand: "expanding",
	pipeline.StageWrite:  "writing",
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

type fileRow struct {
	path    string
	status  pipeline.Status
	stage   pipeline.Stage
	elapsed time.Duration
}

func (r fileRow) finished() bool {
	return r.status == pipeline.StatusDone || r.status == pipeline.StatusCached || r.status == pipeline.StatusError
}

// label is what the status column shows.
func (r fileRow) label() string {
	if r.status == pipeline.StatusWorking {
		if verb, ok := stageVerb[r.stage]; ok {
			return verb
		}
	}
	return string(r.status)
}

func (r fileRow) style() lipgloss.Style {
	switch {
	case r.status == pipeline.StatusError:
		return failStyle
	case r.finished():
		return okStyle
	case r.status == pipeline.StatusWorking:
		return busyStyle
	}
	return pendingStyle
}

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	byPath  map[string]int
	phase   string
	width   int
	done    bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel renders one row per file plus an overall bar. It quits
// once events is closed.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = busyStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]fileRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = fileRow{path: file, status: pipeline.StatusQueued, stage: pipeline.StageLoad}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// apply folds ev into the rows. Events without a file name a run-wide phase.
func (m *progressModel) apply(ev pipeline.Event) tea.Cmd {
	if ev.File == "" {
		if verb, ok := stageVerb[ev.Stage]; ok && ev.Status == pipeline.StatusWorking {
			m.phase = verb
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok || ev.Status == "" {
		return nil
	}
	row := &m.rows[i]
	row.status, row.stage = ev.Status, ev.Stage
	row.elapsed += ev.Elapsed
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		switch {
		case r.finished():
			sum++
		case r.status == pipeline.StatusWorking:
			sum += stageWeight[r.stage]
		}
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) counts() (finished, failed int) {
	for _, r := range m.rows {
		if r.finished() {
			finished++
		}
		if r.status == pipeline.StatusError {
			failed++
		}
	}
	return finished, failed
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := m.title
	if m.phase != "" {
		header = fmt.Sprintf("%s (%s)", header, m.phase)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-18, 20)
	for _, r := range m.rows {
		fmt.Fprintf(&b, "  %s %s", r.style().Render(fmt.Sprintf("%12s", r.label())), truncate(r.path, nameWidth))
		if r.finished() && r.elapsed > 0 {
			b.WriteString(dimStyle.Render(" " + r.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteByte('\n')
	}

	finished, failed := m.counts()
	fmt.Fprintf(&b, "\n%d/%d files", finished, len(m.rows))
	if failed > 0 {
		b.WriteString(failStyle.Render(fmt.Sprintf(", %d with errors", failed)))
	}
	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate clips value to width terminal cells, ellipsis included.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
