// Package styles provides the colour palette and lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colours the TUI draws with. Every entry is adaptive
// so views stay legible on both light and dark terminals.
type Palette struct {
	Accent   lipgloss.AdaptiveColor
	Heading  lipgloss.AdaptiveColor
	Text     lipgloss.AdaptiveColor
	Dim      lipgloss.AdaptiveColor
	Good     lipgloss.AdaptiveColor
	Caution  lipgloss.AdaptiveColor
	Bad      lipgloss.AdaptiveColor
	Frame    lipgloss.AdaptiveColor
	Inverted lipgloss.AdaptiveColor
	BarShade lipgloss.AdaptiveColor
}

// DefaultPalette is the amber-on-slate scheme used by every built-in view.
func DefaultPalette() Palette {
	return Palette{
		Accent:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"},
		Heading:  lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#06B6D4"},
		Text:     lipgloss.AdaptiveColor{Light: "#1E293B", Dark: "#CDD6F4"},
		Dim:      lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#6C7086"},
		Good:     lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#A6E3A1"},
		Caution:  lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#F9E2AF"},
		Bad:      lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#F38BA8"},
		Frame:    lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#45475A"},
		Inverted: lipgloss.AdaptiveColor{Light: "#F8FAFC", Dark: "#1E1E2E"},
		BarShade: lipgloss.AdaptiveColor{Light: "#E2E8F0", Dark: "#181825"},
	}
}

// Styles carries the pre-built lipgloss styles views render with.
// Title and Subtitle head sections, Badge marks inline state such as a
// stale index, InputField and StatusBar frame the search chrome.
type Styles struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Badge      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// New builds the style set from a palette.
func New(p Palette) *Styles {
	frame := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Frame)

	return &Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Subtitle:   lipgloss.NewStyle().Bold(true).Foreground(p.Heading),
		Normal:     lipgloss.NewStyle().Foreground(p.Text),
		Muted:      lipgloss.NewStyle().Foreground(p.Dim),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(p.Inverted).Background(p.Accent),
		Error:      lipgloss.NewStyle().Foreground(p.Bad),
		Success:    lipgloss.NewStyle().Foreground(p.Good),
		Warning:    lipgloss.NewStyle().Foreground(p.Caution),
		Badge:      lipgloss.NewStyle().Bold(true).Foreground(p.Inverted).Background(p.Caution).Padding(0, 1),
		InputField: frame.Padding(0, 1),
		StatusBar:  lipgloss.NewStyle().Foreground(p.Dim).Background(p.BarShade).Padding(0, 1),
		Help:       lipgloss.NewStyle().Foreground(p.Dim),
		Border:     frame,
	}
}

// DefaultStyles returns the style set for the default palette.
func DefaultStyles() *Styles {
	return New(DefaultPalette())
}
