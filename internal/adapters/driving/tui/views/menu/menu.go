// Package menu provides the top-level navigation view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Quit entries leave the program instead of
// switching views.
type Item struct {
	Label string
	Desc  string
	View  messages.ViewType
	Quit  bool
}

// entries lists the menu in display order. The jump keys in the help
// line track this list.
func entries() []Item {
	return []Item{
		{Label: "Search", Desc: "query the library by meaning", View: messages.ViewSearch},
		{Label: "Documents", Desc: "browse indexed files", View: messages.ViewDocuments},
		{Label: "Index Status", Desc: "index size, model, rebuild", View: messages.ViewStatus},
		{Label: "Settings", Desc: "embedding provider and chunking", View: messages.ViewSettings},
		{Label: "Help", Desc: "keybindings", View: messages.ViewHelp},
		{Label: "Quit", Desc: "leave trove", Quit: true},
	}
}

// View is the main menu.
type View struct {
	styles *styles.Styles
	items  []Item

	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu with the standard entries.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		items:  entries(),
		width:  80,
		height: 24,
	}
}

// Init implements the bubbletea lifecycle.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys. Entries can also be activated
// directly with their number.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch key {
	case "up", "k":
		v.move(-1)
	case "down", "j":
		v.move(1)
	case "enter":
		return v.activate(v.selected)
	case "q":
		return v, tea.Quit
	}

	if idx, ok := jumpIndex(key, len(v.items)); ok {
		v.selected = idx
		return v.activate(idx)
	}
	return v, nil
}

// move shifts the highlight by delta, stopping at the list edges.
func (v *View) move(delta int) {
	next := v.selected + delta
	if next < 0 || next >= len(v.items) {
		return
	}
	v.selected = next
}

// jumpIndex maps a digit key to a zero-based entry index.
func jumpIndex(key string, count int) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	idx := int(key[0] - '1')
	if idx >= count {
		return 0, false
	}
	return idx, true
}

func (v *View) activate(idx int) (*View, tea.Cmd) {
	item := v.items[idx]
	if item.Quit {
		return v, tea.Quit
	}
	target := item.View
	return v, func() tea.Msg {
		return messages.ViewChanged{View: target}
	}
}

// View renders the entry list with the selection cursor.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Trove"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Semantic Document Search"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		b.WriteString(v.renderItem(i, item))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] select  [1-6] jump  [q] quit"))

	return b.String()
}

// renderItem draws one numbered row with the selection cursor.
func (v *View) renderItem(i int, item Item) string {
	label := fmt.Sprintf("%d. %s", i+1, item.Label)

	row := "  " + v.styles.Normal.Render(label)
	if i == v.selected {
		row = "> " + v.styles.Selected.Render(label)
	}
	if item.Desc != "" {
		row += "  " + v.styles.Muted.Render(item.Desc)
	}
	return row
}

// SetDimensions records the window size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the highlighted entry index.
func (v *View) Selected() int {
	return v.selected
}
