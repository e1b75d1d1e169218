package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// recentWindow is how many finished models the import view keeps on
// screen.
const recentWindow = 8

// ImportEvent is one finished model observed by the live import view.
// The CLI maps batch outcomes onto it so the TUI stays decoupled from
// the pipeline types.
type ImportEvent struct {
	ModelID string
	Name    string
	State   string
	Error   string
}

type eventMsg ImportEvent

type streamClosedMsg struct{}

// ImportModel is a Bubble Tea model showing live folder-import progress.
type ImportModel struct {
	total  int
	done   int
	failed int
	recent []ImportEvent
	events <-chan ImportEvent

	spin     spinner.Model
	prog     progress.Model
	finished bool
	quitting bool
}

// NewImportModel creates the live import view. total may be zero when
// the model count is unknown; the bar is then omitted and only counters
// are shown.
func NewImportModel(total int, events <-chan ImportEvent) ImportModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(WarningStyle))
	pr := progress.New(progress.WithDefaultGradient())
	return ImportModel{
		total:  total,
		events: events,
		spin:   sp,
		prog:   pr,
	}
}

// waitForEvent blocks on the event channel; a closed channel signals
// batch completion.
func waitForEvent(ch <-chan ImportEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Init implements tea.Model.
func (m ImportModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.events))
}

// Update implements tea.Model.
func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if msg.State == "error" {
			m.failed++
		} else {
			m.done++
		}
		m.recent = append(m.recent, ImportEvent(msg))
		if len(m.recent) > recentWindow {
			m.recent = m.recent[len(m.recent)-recentWindow:]
		}
		cmds := []tea.Cmd{waitForEvent(m.events)}
		if m.total > 0 {
			cmds = append(cmds, m.prog.SetPercent(float64(m.done+m.failed)/float64(m.total)))
		}
		return m, tea.Batch(cmds...)

	case streamClosedMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd

	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.prog.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m ImportModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Folder Import"))
	b.WriteString("\n\n")

	if m.finished {
		b.WriteString(SuccessStyle.Render("Import complete"))
	} else {
		b.WriteString(fmt.Sprintf("%s importing...", m.spin.View()))
	}
	b.WriteString("\n\n")

	if m.total > 0 {
		b.WriteString(m.prog.View())
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("%s processed  %s failed",
		CountStyle.Render(fmt.Sprintf("%d", m.done)),
		ErrorStyle.Render(fmt.Sprintf("%d", m.failed))))
	if m.total > 0 {
		b.WriteString(HelpStyle.Render(fmt.Sprintf("  of %d", m.total)))
	}
	b.WriteString("\n")

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, ev := range m.recent {
			line := fmt.Sprintf("  %s %s", StateStyle(ev.State).Render(ev.State), ValueStyle.Render(ev.Name))
			if ev.Error != "" {
				line += HelpStyle.Render(" " + ev.Error)
			}
			b.WriteString(line + "\n")
		}
	}

	help := HelpStyle.Render("Press q or Ctrl+C to detach (the import keeps running)")
	return BoxStyle.Render(b.String()) + "\n" + help
}

// RunImportTUI runs the live import view until the event channel
// closes or the user quits.
func RunImportTUI(total int, events <-chan ImportEvent) error {
	p := tea.NewProgram(NewImportModel(total, events))
	_, err := p.Run()
	return err
}
