// Package documents provides the library browser view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

var (
	errNoDocumentService = errors.New("document service not available")
	errNoIngestService   = errors.New("ingest service not available")
	errNoActionService   = errors.New("file actions not available")
)

// libraryAction is one entry of the per-document action menu.
type libraryAction int

const (
	actionShowContent libraryAction = iota
	actionShowDetails
	actionOpenFile
	actionRevealFile
	actionRemove
	actionCancel
)

var actionLabels = map[libraryAction]string{
	actionShowContent: "Show content",
	actionShowDetails: "Show details",
	actionOpenFile:    "Open file",
	actionRevealFile:  "Reveal in file manager",
	actionRemove:      "Remove from library",
	actionCancel:      "Cancel",
}

// actionMenu is the overlay shown when a document is activated.
type actionMenu struct {
	actions  []libraryAction
	selected int
	doc      domain.Document
}

func newActionMenu(doc domain.Document) *actionMenu {
	return &actionMenu{
		actions: []libraryAction{
			actionShowContent, actionShowDetails, actionOpenFile,
			actionRevealFile, actionRemove, actionCancel,
		},
		doc: doc,
	}
}

// View is the library browser: every indexed document in a scrollable
// list, with a per-document action menu.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ingestService   driving.IngestService
	actionService   driving.FileActionService
	ctx             context.Context

	documents []domain.Document
	selected  int
	offset    int
	width     int
	height    int
	ready     bool
	loading   bool
	err       error
	menu      *actionMenu
}

// NewView creates a library browser wired to the given services.
func NewView(
	s *styles.Styles,
	documentService driving.DocumentService,
	ingestService driving.IngestService,
	actionService driving.FileActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ingestService:   ingestService,
		actionService:   actionService,
		ctx:             context.Background(),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init implements the view contract; loading happens through Reload.
func (v *View) Init() tea.Cmd {
	return nil
}

// Reload clears the list state and fetches the library afresh.
func (v *View) Reload() tea.Cmd {
	v.documents = nil
	v.selected = 0
	v.offset = 0
	v.err = nil
	v.menu = nil
	v.loading = true
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	svc := v.documentService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: errNoDocumentService}
		}
		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the library browser.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.menu != nil {
			return v.handleMenuKey(msg)
		}
		return v.handleKey(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.documents = msg.Documents
		if v.selected >= len(v.documents) {
			v.selected = 0
			v.offset = 0
		}
		return v, nil

	case messages.DocumentRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.moveSelection(-1)
	case "down", "j":
		v.moveSelection(1)
	case "enter":
		if v.selected < len(v.documents) {
			v.menu = newActionMenu(v.documents[v.selected])
		}
	case "r":
		v.loading = true
		return v, v.loadDocuments()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// moveSelection shifts the selection by delta and scrolls the window
// to keep it visible.
func (v *View) moveSelection(delta int) {
	next := v.selected + delta
	if next < 0 || next >= len(v.documents) {
		return
	}
	v.selected = next

	visible := v.visibleRows()
	if v.selected < v.offset {
		v.offset = v.selected
	} else if v.selected >= v.offset+visible {
		v.offset = v.selected - visible + 1
	}
}

func (v *View) handleMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	menu := v.menu
	switch msg.String() {
	case "up", "k":
		if menu.selected > 0 {
			menu.selected--
		}
	case "down", "j":
		if menu.selected < len(menu.actions)-1 {
			menu.selected++
		}
	case "enter":
		action := menu.actions[menu.selected]
		doc := menu.doc
		v.menu = nil
		return v, v.runAction(action, doc)
	case "esc":
		v.menu = nil
	}

	return v, nil
}

// runAction dispatches a menu action. Service calls run as commands so
// a slow file action cannot block the interface.
func (v *View) runAction(action libraryAction, doc domain.Document) tea.Cmd {
	switch action {
	case actionShowContent:
		return func() tea.Msg {
			return messages.DocumentSelected{Document: doc}
		}
	case actionShowDetails:
		return v.loadDetails(doc.ID)
	case actionOpenFile:
		return v.openFile(doc.Path)
	case actionRevealFile:
		return v.revealFile(doc.Path)
	case actionRemove:
		return v.removeDocument(doc.Path)
	case actionCancel:
	}
	return nil
}

func (v *View) loadDetails(docID string) tea.Cmd {
	svc := v.documentService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: errNoDocumentService}
		}
		doc, err := svc.Get(ctx, docID)
		return messages.DocumentDetailsLoaded{DocumentID: docID, Document: doc, Err: err}
	}
}

func (v *View) openFile(path string) tea.Cmd {
	svc := v.actionService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: errNoActionService}
		}
		if err := svc.OpenFile(ctx, path); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return nil
	}
}

func (v *View) revealFile(path string) tea.Cmd {
	svc := v.actionService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: errNoActionService}
		}
		if err := svc.RevealFile(ctx, path); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return nil
	}
}

func (v *View) removeDocument(path string) tea.Cmd {
	svc := v.ingestService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentRemoved{Path: path, Err: errNoIngestService}
		}
		return messages.DocumentRemoved{Path: path, Err: svc.Remove(ctx, path)}
	}
}

// View renders the library list or the action menu overlay.
func (v *View) View() string {
	sections := []string{
		v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))),
		"",
	}

	switch {
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case len(v.documents) == 0:
		sections = append(sections, v.styles.Muted.Render("Library is empty. Use 'trove add' to index files."))
	case v.menu != nil:
		// The menu brings its own footer.
		sections = append(sections, v.renderMenu())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	default:
		sections = append(sections, v.renderList()...)
	}

	sections = append(sections, "", v.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderList() []string {
	visible := v.visibleRows()
	end := min(v.offset+visible, len(v.documents))

	rows := make([]string, 0, end-v.offset+2)
	for i := v.offset; i < end; i++ {
		rows = append(rows, v.renderRow(i))
	}

	if len(v.documents) > visible {
		rows = append(rows, "", v.styles.Muted.Render(
			fmt.Sprintf("  [%d-%d of %d]", v.offset+1, end, len(v.documents))))
	}
	return rows
}

func (v *View) renderRow(index int) string {
	doc := &v.documents[index]

	name := doc.Filename
	if name == "" {
		name = doc.ID
	}
	if doc.Status == domain.DocumentStatusFailed {
		name += " [failed]"
	}

	colWidth := max(v.width/2-4, 10)
	name = clipTail(name, colWidth)
	path := clipHead(doc.Path, colWidth)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", colWidth, name, path))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", colWidth, name)) +
		v.styles.Muted.Render(path)
}

func (v *View) renderMenu() string {
	menu := v.menu

	name := menu.doc.Filename
	if name == "" {
		name = menu.doc.ID
	}

	lines := []string{
		v.styles.Subtitle.Render("Actions for: " + name),
		"",
	}
	for i, action := range menu.actions {
		label := actionLabels[action]
		if i == menu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+label))
			continue
		}
		lines = append(lines, v.styles.Normal.Render("  "+label))
	}
	lines = append(lines, "", v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [r] reload  [esc] back")
}

// visibleRows is the list capacity after the title, scroll indicator,
// and help footer are accounted for.
func (v *View) visibleRows() int {
	return max(v.height-8, 1)
}

// clipTail shortens s to limit runes, ellipsising the end.
func clipTail(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// clipHead shortens s to limit runes, ellipsising the start so the
// filename end of a path stays readable.
func clipHead(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return "..." + string(runes[len(runes)-limit+3:])
}

// SetDimensions sizes the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the loaded library listing.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the selected document, or nil for an empty
// library.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected >= len(v.documents) {
		return nil
	}
	return &v.documents[v.selected]
}

// Err returns the current error.
func (v *View) Err() error {
	return v.err
}
