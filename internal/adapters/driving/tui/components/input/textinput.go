// Package input provides the query input component for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
)

const (
	queryCharLimit = 256
	minFieldWidth  = 20
)

// searchLabel is rendered outside the bordered field, so the inner
// prompt is disabled.
const searchLabel = "Search: "

// SearchInput wraps a bubbles textinput as the query field.
type SearchInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int
}

// NewSearchInput creates a focused query input.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "Describe what you are looking for..."
	field.Prompt = ""
	field.CharLimit = queryCharLimit
	field.Width = 50
	field.Focus()

	return &SearchInput{
		field:  field,
		styles: s,
		width:  50,
	}
}

// Init starts the cursor blink.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards messages to the underlying field.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.field, cmd = s.field.Update(msg)
	return s, cmd
}

// View renders the label and the bordered field side by side.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render(searchLabel)
	box := s.styles.InputField.Render(s.field.View())
	//nolint:misspell // lipgloss.Center is the library's constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, box)
}

// Value returns the typed query.
func (s *SearchInput) Value() string {
	return s.field.Value()
}

// SetValue replaces the typed query.
func (s *SearchInput) SetValue(value string) {
	s.field.SetValue(value)
}

// Focus directs key input to the field.
func (s *SearchInput) Focus() tea.Cmd {
	return s.field.Focus()
}

// Blur stops the field from receiving key input.
func (s *SearchInput) Blur() {
	s.field.Blur()
}

// Focused reports whether the field receives key input.
func (s *SearchInput) Focused() bool {
	return s.field.Focused()
}

// SetWidth sizes the field to the view width, leaving room for the
// label and the field border.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	fieldWidth := width - lipgloss.Width(searchLabel) - 4
	if fieldWidth < minFieldWidth {
		fieldWidth = minFieldWidth
	}
	s.field.Width = fieldWidth
}
