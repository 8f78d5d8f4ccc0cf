package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/views/docdetails"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/views/indexstatus"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/views/settings"
)

// App is the root Bubble Tea model. It owns one instance of every
// screen and routes messages between them: navigation and other global
// concerns are handled here, everything else is delivered to the view
// that owns it.
type App struct {
	ctx context.Context

	menu     *menu.View
	search   *search.View
	library  *documents.View
	content  *doccontent.View
	details  *docdetails.View
	status   *indexstatus.View
	settings *settings.View

	active messages.ViewType
	err    error
	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp wires a view for each screen to the services in ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ctx:      context.Background(),
		menu:     menu.NewView(s),
		search:   search.NewView(s, nil, ports.Search, ports.Action),
		library:  documents.NewView(s, ports.Document, ports.Ingest, ports.Action),
		content:  doccontent.NewView(s, ports.Document),
		details:  docdetails.NewView(s),
		status:   indexstatus.NewView(s, ports.Maintenance),
		settings: settings.NewView(s, ports.Settings),
		active:   messages.ViewMenu,
	}, nil
}

// WithContext sets the context the views pass to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx == nil {
		return a
	}
	a.ctx = ctx
	a.search = a.search.WithContext(ctx)
	a.library = a.library.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("trove - Semantic Document Search"),
	)
}

// Update implements tea.Model. Global messages are handled here; the
// rest flow through route.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.active == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.active = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.routeToActive(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.DocumentSelected:
		a.active = messages.ViewDocContent
		return a, a.content.SetDocument(&msg.Document)

	case messages.DocumentDetailsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		if msg.Document != nil {
			a.details.SetDocument(msg.Document)
			a.active = messages.ViewDocDetails
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.routeToActive(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.route(msg)
}

// switchTo activates a view. Screens that show live data refresh on
// entry; the search and settings forms start from a clean slate.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.active = view

	switch view {
	case messages.ViewSearch:
		a.search.Reset()
		return a.search.Init()
	case messages.ViewDocuments:
		return a.library.Reload()
	case messages.ViewStatus:
		return a.status.Reload()
	case messages.ViewSettings:
		a.settings.Reset()
		return a.settings.Init()
	case messages.ViewMenu, messages.ViewHelp,
		messages.ViewDocContent, messages.ViewDocDetails:
	}
	return nil
}

// route delivers msg to the view that owns it. A background command's
// result goes to its home view even when focus has moved on, so a slow
// load cannot land on whichever screen happens to be visible.
func (a *App) route(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch msg.(type) {
	case messages.SearchCompleted:
		a.search, cmd = a.search.Update(msg)
	case messages.DocumentsLoaded, messages.DocumentRemoved:
		a.library, cmd = a.library.Update(msg)
	case messages.DocumentContentLoaded:
		a.content, cmd = a.content.Update(msg)
	case messages.StatusLoaded, messages.RebuildCompleted:
		a.status, cmd = a.status.Update(msg)
	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settings, cmd = a.settings.Update(msg)
	default:
		cmd = a.routeToActive(msg)
	}
	return cmd
}

// routeToActive forwards msg to whichever view has focus.
func (a *App) routeToActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch a.active {
	case messages.ViewMenu:
		a.menu, cmd = a.menu.Update(msg)
	case messages.ViewSearch:
		a.search, cmd = a.search.Update(msg)
	case messages.ViewDocuments:
		a.library, cmd = a.library.Update(msg)
	case messages.ViewDocContent:
		a.content, cmd = a.content.Update(msg)
	case messages.ViewDocDetails:
		a.details, cmd = a.details.Update(msg)
	case messages.ViewStatus:
		a.status, cmd = a.status.Update(msg)
	case messages.ViewSettings:
		a.settings, cmd = a.settings.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.menu.SetDimensions(width, height)
	a.search.SetDimensions(width, height)
	a.library.SetDimensions(width, height)
	a.content.SetDimensions(width, height)
	a.details.SetDimensions(width, height)
	a.status.SetDimensions(width, height)
	a.settings.SetDimensions(width, height)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Starting trove..."
	}

	switch a.active {
	case messages.ViewSearch:
		return a.search.View()
	case messages.ViewDocuments:
		return a.library.View()
	case messages.ViewDocContent:
		return a.content.View()
	case messages.ViewDocDetails:
		return a.details.View()
	case messages.ViewStatus:
		return a.status.View()
	case messages.ViewSettings:
		return a.settings.View()
	case messages.ViewHelp:
		return helpText
	default:
		return a.menu.View()
	}
}

const helpText = `Keyboard reference

Global
  ctrl+c        quit from anywhere
  esc           back to the menu

Menu
  ↑/↓ or k/j    move
  enter         open the highlighted screen
  q             quit

Search
  type          edit the query
  enter         run the search, then open actions for a result
  ↑/↓ or k/j    move through results
  n             start a new query

Library
  ↑/↓ or k/j    move through documents
  enter         actions for the highlighted document
  r             reload from the index

Index status
  r             refresh
  enter         run the highlighted maintenance action

[esc] back`

// Run drives the program until the user quits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}

// CurrentView reports which view has focus.
func (a *App) CurrentView() messages.ViewType {
	return a.active
}

// Err returns the last error surfaced to the app.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the first window size arrived.
func (a *App) Ready() bool {
	return a.ready
}
