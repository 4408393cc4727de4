package display

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusMsg carries a pipeline status into the TUI event loop
type StatusMsg Status

// Model is the bubbletea model of the full-screen display
type Model struct {
	title  string
	status Status
	seen   bool
	width  int
	height int
}

// NewModel returns a model showing title above the status line
func NewModel(title string) Model {
	return Model{title: title, width: 80, height: 24}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		m.status = Status(msg)
		m.seen = true
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	line := Placeholder
	if m.seen {
		line = m.status.Text()
	}

	lines := []string{m.title, "press q to quit", "", line}
	if m.seen && m.status.HasNote() {
		lines = append(lines, fmt.Sprintf("%+.0f cents", m.status.Cents()))
	}
	if m.seen && m.status.Transfer && m.status.Buffered > 0 {
		lines = append(lines, fmt.Sprintf("%d notes recorded", m.status.Buffered))
	}

	var b strings.Builder
	top := max(m.height/2-2, 0)
	b.WriteString(strings.Repeat("\n", top))
	for _, l := range lines {
		b.WriteString(center(l, m.width))
		b.WriteByte('\n')
	}
	return b.String()
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

// TUI is a Display drawing a full-screen bubbletea program
type TUI struct {
	program *tea.Program
}

// NewTUI creates the program. Call Run to start drawing.
func NewTUI(title string, opts ...tea.ProgramOption) *TUI {
	return &TUI{program: tea.NewProgram(NewModel(title), opts...)}
}

// Report implements Display. It blocks until the event loop accepts the
// message or the program has exited.
func (t *TUI) Report(s Status) error {
	t.program.Send(StatusMsg(s))
	return nil
}

// Run draws until the user quits or the program context is cancelled
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}
