package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmCancelledMsg is emitted when a confirmation is declined.
type ConfirmCancelledMsg struct{}

// Confirm is a yes/no modal. Accepting emits the wrapped action message.
type Confirm struct {
	prompt string
	action tea.Msg
	done   bool
}

// NewConfirm creates a modal asking prompt; action is sent on "y".
func NewConfirm(prompt string, action tea.Msg) Confirm {
	return Confirm{prompt: prompt, action: action}
}

// Done reports whether the modal has been answered.
func (m Confirm) Done() bool {
	return m.done
}

// Init implements tea.Model
func (m Confirm) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		m.done = true
		return m, emit(m.action)
	case "n", "N", "esc", "q":
		m.done = true
		return m, emit(ConfirmCancelledMsg{})
	}
	return m, nil
}

// View implements tea.Model
func (m Confirm) View() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(1, 3)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1).
		Render("y: yes  n: no")

	return box.Render(m.prompt + "\n" + hint)
}
