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

	"minic/internal/buildpipeline"
)

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	units   []unitRow
	byPath  map[string]int
	// phase is the label of the last build-wide event.
	phase string
	width int
	done  bool
}

// unitRow is one line of the progress view.
type unitRow struct {
	path    string
	label   string
	stage   buildpipeline.Stage
	elapsed time.Duration
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

const labelWidth = 10

// NewProgressModel returns a Bubble Tea model that renders build progress.
// The model quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 60

	units := make([]unitRow, len(files))
	byPath := make(map[string]int, len(files))
	for i, file := range files {
		units[i] = unitRow{path: file, label: "queued"}
		byPath[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		units:   units,
		byPath:  byPath,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(buildpipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
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
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.units) == 0 {
		return ""
	}
	header := fmt.Sprintf("%s %d/%d", m.title, m.finishedCount(), len(m.units))
	if m.phase != "" {
		header += " (" + m.phase + ")"
	}
	if !m.done {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-labelWidth-14, 20)
	for _, u := range m.units {
		label := styleStatus(u.label).Render(fmt.Sprintf("%*s", labelWidth, u.label))
		line := fmt.Sprintf("  %s %s", label, truncate(u.path, nameWidth))
		if u.elapsed > 0 {
			line += fmt.Sprintf(" %s", dim.Render(u.elapsed.Round(time.Microsecond).String()))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	if cached, failed := m.tally(); cached > 0 || failed > 0 {
		b.WriteString(dim.Render(fmt.Sprintf("%d cached, %d failed", cached, failed)))
		b.WriteByte('\n')
	}
	return b.String()
}

var dim = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.phase = label
		}
		return nil
	}
	idx, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	u := &m.units[idx]
	u.elapsed += ev.Elapsed
	if label != "" {
		u.label = label
		u.stage = ev.Stage
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.units) == 0 {
		return 0
	}
	total := 0.0
	for _, u := range m.units {
		if finished(u.label) {
			total++
		} else {
			total += progressFromStage(u.stage)
		}
	}
	return total / float64(len(m.units))
}

func (m *progressModel) finishedCount() int {
	n := 0
	for _, u := range m.units {
		if finished(u.label) {
			n++
		}
	}
	return n
}

func (m *progressModel) tally() (cached, failed int) {
	for _, u := range m.units {
		switch u.label {
		case "cached":
			cached++
		case "error":
			failed++
		}
	}
	return cached, failed
}

func finished(label string) bool {
	return label == "done" || label == "cached" || label == "error"
}

func progressFromStage(stage buildpipeline.Stage) float64 {
	switch stage {
	case buildpipeline.StageLoad:
		return 0.05
	case buildpipeline.StageSymbols:
		return 0.2
	case buildpipeline.StageMemory:
		return 0.35
	case buildpipeline.StageHIR:
		return 0.5
	case buildpipeline.StageOptimize:
		return 0.65
	case buildpipeline.StageLIR:
		return 0.8
	case buildpipeline.StageWrite:
		return 0.95
	default:
		return 0.0
	}
}

// statusLabel maps an event to the label shown next to its unit. Done
// events of intermediate stages return "" so the unit keeps its label until
// the next stage starts.
func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	switch status {
	case buildpipeline.StatusQueued:
		return "queued"
	case buildpipeline.StatusCached:
		return "cached"
	case buildpipeline.StatusError:
		return "error"
	case buildpipeline.StatusDone:
		if stage == buildpipeline.StageLIR || stage == buildpipeline.StageWrite {
			return "done"
		}
		return ""
	case buildpipeline.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageLoad:
		return "loading"
	case buildpipeline.StageSymbols, buildpipeline.StageMemory:
		return "resolving"
	case buildpipeline.StageHIR:
		return "generating"
	case buildpipeline.StageOptimize:
		return "optimizing"
	case buildpipeline.StageLIR:
		return "lowering"
	case buildpipeline.StageWrite:
		return "writing"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done", "cached":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "loading", "resolving", "generating", "optimizing", "lowering", "writing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
