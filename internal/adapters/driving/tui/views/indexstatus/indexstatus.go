// Package indexstatus provides the index status view component for the TUI.
package indexstatus

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

// MenuOption represents an action in the index status menu.
type MenuOption int

const (
	OptionRebuild MenuOption = iota
	OptionClear
	OptionBack
)

// View is the index status view.
type View struct {
	styles             *styles.Styles
	maintenanceService driving.MaintenanceService

	status     *driving.IndexStatus
	report     *driving.IngestReport
	selected   MenuOption
	width      int
	height     int
	ready      bool
	err        error
	loading    bool
	rebuilding bool
	clearing   bool
}

// NewView creates a new index status view.
func NewView(s *styles.Styles, maintenanceService driving.MaintenanceService) *View {
	return &View{
		styles:             s,
		maintenanceService: maintenanceService,
		selected:           OptionRebuild,
	}
}

// Reload refreshes the index status snapshot.
func (v *View) Reload() tea.Cmd {
	v.loading = true
	v.err = nil
	v.report = nil
	return v.loadStatus()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// loadStatus returns a command that fetches the index status.
func (v *View) loadStatus() tea.Cmd {
	return func() tea.Msg {
		if v.maintenanceService == nil {
			return messages.StatusLoaded{Err: fmt.Errorf("maintenance service not available")}
		}

		status, err := v.maintenanceService.Status(context.Background())
		return messages.StatusLoaded{Status: status, Err: err}
	}
}

// Update handles messages for the index status view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.StatusLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.status = msg.Status
			v.err = nil
		}
		return v, nil

	case messages.RebuildCompleted:
		v.rebuilding = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.report = msg.Report
		return v, v.loadStatus()

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.rebuilding = false
		v.clearing = false
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > OptionRebuild {
			v.selected--
		}
	case "down", "j":
		if v.selected < OptionBack {
			v.selected++
		}
	case "enter":
		return v.handleSelect()
	case "r":
		return v, v.Reload()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// handleSelect handles selection of a menu option.
func (v *View) handleSelect() (*View, tea.Cmd) {
	switch v.selected {
	case OptionRebuild:
		if v.rebuilding {
			return v, nil
		}
		v.rebuilding = true
		v.err = nil
		v.report = nil
		return v, v.rebuildIndex()
	case OptionClear:
		v.err = nil
		v.report = nil
		return v, v.clearIndex()
	case OptionBack:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// rebuildIndex returns a command that rebuilds the whole index.
func (v *View) rebuildIndex() tea.Cmd {
	return func() tea.Msg {
		if v.maintenanceService == nil {
			return messages.RebuildCompleted{Err: fmt.Errorf("maintenance service not available")}
		}

		report, err := v.maintenanceService.RebuildIndex(context.Background())
		return messages.RebuildCompleted{Report: report, Err: err}
	}
}

// clearIndex returns a command that empties the index and re-fetches status.
func (v *View) clearIndex() tea.Cmd {
	return func() tea.Msg {
		if v.maintenanceService == nil {
			return messages.ErrorOccurred{Err: fmt.Errorf("maintenance service not available")}
		}

		v.clearing = true
		if err := v.maintenanceService.ClearIndex(context.Background()); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		v.clearing = false

		status, err := v.maintenanceService.Status(context.Background())
		return messages.StatusLoaded{Status: status, Err: err}
	}
}

// View renders the index status view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Index Status"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading status..."))
		b.WriteString("\n")
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.status != nil {
		b.WriteString(v.renderStatus())
		b.WriteString("\n")
	}

	if v.rebuilding {
		b.WriteString(v.styles.Muted.Render("Rebuilding index..."))
		b.WriteString("\n\n")
	}
	if v.clearing {
		b.WriteString(v.styles.Muted.Render("Clearing index..."))
		b.WriteString("\n\n")
	}
	if v.report != nil {
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf(
			"Rebuild complete: %d indexed, %d skipped, %d failed",
			v.report.Indexed, v.report.Skipped, v.report.Failed)))
		b.WriteString("\n\n")
	}

	b.WriteString(strings.Repeat("─", minInt(40, v.width-4)))
	b.WriteString("\n\n")

	options := []struct {
		option MenuOption
		label  string
	}{
		{OptionRebuild, "Rebuild Index"},
		{OptionClear, "Clear Index"},
		{OptionBack, "Back"},
	}

	for _, opt := range options {
		indicator := "  "
		if v.selected == opt.option {
			indicator = "> "
			b.WriteString(v.styles.Selected.Render(fmt.Sprintf("%s%s", indicator, opt.label)))
		} else {
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%s%s", indicator, opt.label)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderStatus renders the status fields.
func (v *View) renderStatus() string {
	var b strings.Builder
	s := v.status

	b.WriteString(v.styles.Subtitle.Render("Documents: "))
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%d", s.Documents)))
	b.WriteString("\n")

	b.WriteString(v.styles.Subtitle.Render("Chunks: "))
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%d", s.Chunks)))
	b.WriteString("\n")

	b.WriteString(v.styles.Subtitle.Render("Vectors: "))
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%d", s.Vectors)))
	b.WriteString("\n")

	if s.Dimensions > 0 {
		b.WriteString(v.styles.Subtitle.Render("Dimensions: "))
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%d", s.Dimensions)))
		b.WriteString("\n")
	}

	if s.Model != "" {
		b.WriteString(v.styles.Subtitle.Render("Model: "))
		b.WriteString(v.styles.Normal.Render(s.Model))
		b.WriteString("\n")
	}

	if s.IndexPath != "" {
		b.WriteString(v.styles.Subtitle.Render("Index path: "))
		b.WriteString(v.styles.Muted.Render(s.IndexPath))
		b.WriteString("\n")
	}

	if s.Stale {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Index is stale. Rebuild to apply the current settings."))
		b.WriteString("\n")
	}

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] select  [r] refresh  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Status returns the last loaded status.
func (v *View) Status() *driving.IndexStatus {
	return v.status
}

// SelectedOption returns the currently selected menu option.
func (v *View) SelectedOption() MenuOption {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
