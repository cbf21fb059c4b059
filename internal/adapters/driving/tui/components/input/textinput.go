// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/provena/internal/adapters/driving/tui/styles"
)

// maxInputLength bounds pasted text. Longer text inputs only dilute the
// key element extraction.
const maxInputLength = 2048

// TraceInput wraps a bubbles textinput for URLs and pasted text.
type TraceInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewTraceInput creates a new trace input component.
func NewTraceInput(s *styles.Styles) *TraceInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Paste a URL or a quote..."
	ti.Focus()
	ti.CharLimit = maxInputLength
	ti.Width = 50

	return &TraceInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (t *TraceInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (t *TraceInput) Update(msg tea.Msg) (*TraceInput, tea.Cmd) {
	var cmd tea.Cmd
	t.textinput, cmd = t.textinput.Update(msg)
	return t, cmd
}

// View renders the input with its label.
func (t *TraceInput) View() string {
	label := t.styles.Title.Render("Trace: ")
	field := t.styles.InputField.Render(t.textinput.View())
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (t *TraceInput) Value() string {
	return t.textinput.Value()
}

// SetValue sets the input value.
func (t *TraceInput) SetValue(value string) {
	t.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (t *TraceInput) Focus() tea.Cmd {
	return t.textinput.Focus()
}

// Blur removes focus from the input.
func (t *TraceInput) Blur() {
	t.textinput.Blur()
}

// Focused returns whether the input is focused.
func (t *TraceInput) Focused() bool {
	return t.textinput.Focused()
}

// SetWidth sets the width of the input, leaving room for the label.
func (t *TraceInput) SetWidth(width int) {
	t.width = width
	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	t.textinput.Width = inputWidth
}

// Width returns the current width.
func (t *TraceInput) Width() int {
	return t.width
}

// Reset clears the input.
func (t *TraceInput) Reset() {
	t.textinput.Reset()
}
