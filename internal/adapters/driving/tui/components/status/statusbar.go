// Package status renders the one-line status bar under the search view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
)

// State selects what the left side of the bar reports.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateResults   State = "results"
	StateError     State = "error"
)

// Bar is a passive component: views mutate it through the Set methods
// and render it with View. It does not receive bubbletea messages.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	resultCount int
	stale       bool
	width       int
}

// NewBar creates a status bar with defaults filled in for nil arguments.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the bar: state on the left, key hints on the right,
// padded to the full width.
func (s *Bar) View() string {
	left := s.leftText()
	if s.stale {
		left = s.styles.Badge.Render("index stale") + " " + left
	}
	right := s.hints()

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) leftText() string {
	switch s.state {
	case StateSearching:
		return s.styles.Muted.Render("Searching...")
	case StateError:
		msg := "Error"
		if s.message != "" {
			msg = "Error: " + s.message
		}
		return s.styles.Error.Render(msg)
	case StateReady, StateResults:
	}

	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	if s.resultCount > 0 {
		return s.styles.Normal.Render(fmt.Sprintf("%d results", s.resultCount))
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) hints() string {
	bindings := s.keymap.ShortHelp()
	if s.state == StateResults && s.resultCount > 0 {
		bindings = s.keymap.ResultsHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(parts, " · "))
}

// SetState sets what the bar reports.
func (s *Bar) SetState(state State) { s.state = state }

// State reports which mode the bar is in.
func (s *Bar) State() State { return s.state }

// SetMessage overrides the left text while state is ready or results.
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the current override text.
func (s *Bar) Message() string { return s.message }

// SetResultCount records how many results the last search returned.
func (s *Bar) SetResultCount(count int) { s.resultCount = count }

// ResultCount returns the recorded result count.
func (s *Bar) ResultCount() int { return s.resultCount }

// SetStale toggles the stale-index badge.
func (s *Bar) SetStale(stale bool) { s.stale = stale }

// Stale reports whether the badge is shown.
func (s *Bar) Stale() bool { return s.stale }

// SetWidth sets the render width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the render width.
func (s *Bar) Width() int { return s.width }

// Clear resets the bar to its initial ready state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
	s.stale = false
}
