// Package search provides the query-and-results view for the TUI.
package search

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

// ErrNoSearchService indicates that no search service was provided.
var ErrNoSearchService = errors.New("search service is required")

// mode decides where keystrokes go.
type mode int

const (
	modeTyping  mode = iota // keys edit the query
	modeResults             // keys drive the result list
	modeMenu                // keys drive the action overlay
)

// resultAction is one entry of the per-result action overlay.
type resultAction int

const (
	actionCopy resultAction = iota
	actionOpen
	actionReveal
	actionCancel
)

// menuOrder lists the overlay entries top to bottom.
var menuOrder = []resultAction{actionCopy, actionOpen, actionReveal, actionCancel}

func (a resultAction) label() string {
	switch a {
	case actionCopy:
		return "Copy matched text"
	case actionOpen:
		return "Open file"
	case actionReveal:
		return "Reveal in file manager"
	default:
		return "Cancel"
	}
}

// View is the search screen: query input on top, ranked results below,
// status bar at the bottom.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	actionService driving.FileActionService
	ctx           context.Context

	mode   mode
	choice int                  // highlighted overlay entry
	target *domain.SearchResult // result the overlay acts on
	err    error

	width  int
	height int
	ready  bool
}

// NewView creates a search view wired to the given services.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	actionService driving.FileActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles: s,
		keymap: km,

		searchService: searchService,
		actionService: actionService,
		ctx:           context.Background(),

		mode:   modeTyping,
		width:  80,
		height: 24,
	}
	v.input = input.NewSearchInput(s)
	v.list = list.NewResultList(s)
	v.statusbar = status.NewBar(s, km)
	return v
}

// WithContext sets the context used for searches and file actions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor blink.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles sizing, completed searches, and mode-aware keys.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.SearchCompleted:
		v.applySearchResponse(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.fail(msg.Err)
		return v, nil
	}

	return v, v.forward(msg)
}

// forward hands component messages, cursor blinks and the like, to the
// input and the list. Batch drops nil commands.
func (v *View) forward(msg tea.Msg) tea.Cmd {
	var cmds [2]tea.Cmd
	v.input, cmds[0] = v.input.Update(msg)
	v.list, cmds[1] = v.list.Update(msg)
	return tea.Batch(cmds[:]...)
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Esc backs out one layer from any mode.
	if msg.Type == tea.KeyEsc {
		return v.escape()
	}

	switch v.mode {
	case modeMenu:
		v.menuKey(msg)
		return v, nil
	case modeResults:
		v.resultsKey(msg)
		return v, nil
	default:
		return v.typingKey(msg)
	}
}

// escape closes the overlay if one is open, otherwise leaves the
// screen.
func (v *View) escape() (*View, tea.Cmd) {
	if v.mode == modeMenu {
		v.closeMenu()
		return v, nil
	}
	return v, func() tea.Msg {
		return messages.ViewChanged{View: messages.ViewMenu}
	}
}

func (v *View) typingKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return v, v.submit()
	}
	v.input, _ = v.input.Update(msg)
	return v, nil
}

func (v *View) resultsKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "enter":
		if result := v.list.SelectedResult(); result != nil {
			v.mode = modeMenu
			v.choice = 0
			v.target = result
		}
	case "up", "k":
		v.list.MoveUp()
	case "down", "j":
		v.list.MoveDown()
	case "n":
		v.startNewQuery()
	}
}

func (v *View) menuKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if v.choice > 0 {
			v.choice--
		}
	case "down", "j":
		if v.choice < len(menuOrder)-1 {
			v.choice++
		}
	case "enter":
		action := menuOrder[v.choice]
		target := v.target
		v.closeMenu()
		v.runAction(action, target)
	}
}

func (v *View) closeMenu() {
	v.mode = modeResults
	v.choice = 0
	v.target = nil
}

// runAction performs a result action and reports the outcome in the
// status bar.
func (v *View) runAction(action resultAction, result *domain.SearchResult) {
	if result == nil || action == actionCancel {
		return
	}
	if v.actionService == nil {
		v.statusbar.SetMessage("File actions not available")
		return
	}

	var err error
	var done string
	switch action {
	case actionCopy:
		err = v.actionService.CopyToClipboard(v.ctx, result)
		done = "Copied to clipboard"
	case actionOpen:
		err = v.actionService.OpenFile(v.ctx, result.Document.Path)
		done = "Opening " + result.Document.Filename
	case actionReveal:
		err = v.actionService.RevealFile(v.ctx, result.Document.Path)
		done = "Revealing " + result.Document.Filename
	case actionCancel:
	}

	if err != nil {
		v.statusbar.SetMessage(action.label() + ": " + err.Error())
		return
	}
	v.statusbar.SetMessage(done)
}

// submit runs the typed query. An empty query is ignored.
func (v *View) submit() tea.Cmd {
	query := v.input.Value()
	if query == "" {
		return nil
	}

	v.statusbar.SetState(status.StateSearching)
	v.mode = modeResults
	v.input.Blur()

	svc := v.searchService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		response, err := svc.Search(ctx, query, domain.SearchOptions{})
		return messages.SearchCompleted{Response: response, Err: err}
	}
}

func (v *View) startNewQuery() {
	v.mode = modeTyping
	v.input.Focus()
	v.input.SetValue("")
}

// fail records err and mirrors it in the status bar.
func (v *View) fail(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) applySearchResponse(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.fail(msg.Err)
		return
	}

	var results []domain.SearchResult
	if msg.Response != nil {
		results = msg.Response.Results
		v.statusbar.SetStale(msg.Response.IndexStale)
	}

	v.err = nil
	v.list.SetResults(results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(results))
	v.mode = modeResults
	v.input.Blur()
}

// View renders the query line, the result list, and any open overlay.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Trove"), "")
	sections = append(sections, v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.mode == modeMenu {
		sections = append(sections, "", v.renderMenu())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderMenu() string {
	lines := make([]string, 0, len(menuOrder))
	for i, action := range menuOrder {
		if i == v.choice {
			lines = append(lines, v.styles.Selected.Render("> "+action.label()))
			continue
		}
		lines = append(lines, v.styles.Normal.Render("  "+action.label()))
	}

	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sizes the view and its components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	// Header, input, separators and status bar take ten rows.
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Query returns the typed query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery replaces the typed query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedResult returns the highlighted result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Err returns the current error.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to typing mode with an empty query.
func (v *View) Reset() {
	v.startNewQuery()
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused reports whether the view is in typing mode.
func (v *View) InputFocused() bool {
	return v.mode == modeTyping
}
