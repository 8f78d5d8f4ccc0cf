// Package list provides the navigable search result list for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/trove/internal/core/domain"
)

// ResultList renders search results two lines each (name with score,
// then preview) and keeps the selection inside the visible window.
type ResultList struct {
	styles *styles.Styles

	results  []domain.SearchResult
	selected int

	width  int
	height int
}

// NewResultList creates an empty result list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 10}
}

// Update moves the selection on up/down and their vim equivalents.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the slice of results around the selection.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := []string{
		r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))),
		"",
	}

	start, end := r.visibleRange()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i))
	}
	return strings.Join(lines, "\n")
}

// visibleRange picks the window of results that keeps the selection on
// screen. Each result occupies roughly three lines once spacing is
// counted.
func (r *ResultList) visibleRange() (int, int) {
	visible := max((r.height-4)/3, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	return start, min(start+visible, len(r.results))
}

func (r *ResultList) renderResult(index int) string {
	result := &r.results[index]

	name := result.Document.Filename
	if name == "" {
		name = result.Document.ID
	}
	nameWidth := max(r.width-20, 10)
	name = truncate(name, nameWidth)

	score := fmt.Sprintf("%.2f", result.Score)

	var nameLine string
	if index == r.selected {
		nameLine = r.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", nameWidth, name, score))
	} else {
		nameLine = r.styles.Normal.Render(fmt.Sprintf("  %-*s  ", nameWidth, name)) +
			r.styles.Muted.Render(score)
	}

	preview := result.Preview
	if preview == "" {
		preview = result.Chunk.Content
	}
	preview = truncate(preview, max(r.width-6, 20))

	return nameLine + "\n" + r.styles.Muted.Render("    "+preview)
}

// truncate shortens s to at most limit runes, ellipsised. Counting
// runes keeps multi-byte filenames from being cut mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// SetResults replaces the results and moves the selection to the top.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results exposes the backing result slice.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the highlighted index.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the selected result, or nil for an empty list.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves the selection up, stopping at the first result.
func (r *ResultList) MoveUp() { r.move(-1) }

// MoveDown moves the selection down, stopping at the last result.
func (r *ResultList) MoveDown() { r.move(1) }

func (r *ResultList) move(delta int) {
	next := r.selected + delta
	if next >= 0 && next < len(r.results) {
		r.selected = next
	}
}

// SetDimensions sets the space available for rendering.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}
