// Package doccontent renders a document's extracted text with scrolling.
package doccontent

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

const (
	// footerReserve is the line count kept for title, separator and help.
	footerReserve = 6

	// minWrapWidth is the narrowest wrap applied before the first
	// WindowSizeMsg arrives.
	minWrapWidth = 20
)

// pager tracks the wrapped display lines and the scroll position into
// them.
type pager struct {
	lines  []string
	offset int
}

// scroll moves the window by delta lines, clamped to the wrapped text.
func (p *pager) scroll(delta, page int) {
	p.offset += delta
	if p.offset < 0 {
		p.offset = 0
	}
	if top := p.top(page); p.offset > top {
		p.offset = top
	}
}

// top is the largest offset that still fills a page where possible.
func (p *pager) top(page int) int {
	top := len(p.lines) - page
	if top < 0 {
		return 0
	}
	return top
}

// window is the slice of lines visible at the current offset.
func (p *pager) window(page int) []string {
	end := min(p.offset+page, len(p.lines))
	return p.lines[p.offset:end]
}

// View shows the extracted text of one document.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService

	document *domain.Document
	content  string
	text     pager
	loading  bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates the content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
	}
}

// SetDocument switches to doc and returns the command that fetches its
// extracted text.
func (v *View) SetDocument(doc *domain.Document) tea.Cmd {
	v.document = doc
	v.content = ""
	v.text = pager{}
	v.err = nil
	v.loading = true

	svc := v.documentService
	return func() tea.Msg {
		if doc == nil || svc == nil {
			return messages.DocumentContentLoaded{Err: fmt.Errorf("document service not available")}
		}
		content, err := svc.GetContent(context.Background(), doc.ID)
		return messages.DocumentContentLoaded{
			DocumentID: doc.ID,
			Content:    content,
			Err:        err,
		}
	}
}

// Init implements the bubbletea lifecycle.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles scrolling and the loaded-content message.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.DocumentContentLoaded:
		v.contentLoaded(msg)
	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err
	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

// contentLoaded stores the fetched text, or the failure, and rewraps.
func (v *View) contentLoaded(msg messages.DocumentContentLoaded) {
	v.loading = false
	if msg.Err != nil {
		v.err = msg.Err
		return
	}
	v.err = nil
	v.content = msg.Content
	v.rewrap()
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	page := v.pageSize()
	switch msg.String() {
	case "up", "k":
		v.text.scroll(-1, page)
	case "down", "j":
		v.text.scroll(1, page)
	case "pgup", "ctrl+u":
		v.text.scroll(-page, page)
	case "pgdown", "ctrl+d":
		v.text.scroll(page, page)
	case "home", "g":
		v.text.offset = 0
	case "end", "G":
		v.text.offset = v.text.top(page)
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}
	return v, nil
}

// rewrap refits the text to the current width and keeps the scroll
// position inside the new line count.
func (v *View) rewrap() {
	v.text.lines = wrapLines(v.content, v.textWidth())
	v.text.scroll(0, v.pageSize())
}

// wrapLines splits text into display lines at most limit runes wide.
// The split is rune-aware so multi-byte characters never straddle rows.
func wrapLines(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit < minWrapWidth {
		limit = minWrapWidth
	}

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		runes := []rune(line)
		for len(runes) > limit {
			lines = append(lines, string(runes[:limit]))
			runes = runes[limit:]
		}
		lines = append(lines, string(runes))
	}
	return lines
}

// textWidth is the usable column count inside the side padding.
func (v *View) textWidth() int {
	return v.width - 4
}

// pageSize is how many text lines fit between the header and the help
// line.
func (v *View) pageSize() int {
	size := v.height - footerReserve
	if size < 1 {
		return 1
	}
	return size
}

// View renders the document text with a scroll position footer.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.textWidth(), 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.text.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		v.renderText(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))

	return b.String()
}

// title prefers the filename, then the extracted title, then the id.
func (v *View) title() string {
	doc := v.document
	switch {
	case doc == nil:
		return "Document Content"
	case doc.Filename != "":
		return doc.Filename
	case doc.Title != "":
		return doc.Title
	default:
		return doc.ID
	}
}

func (v *View) renderText(b *strings.Builder) {
	page := v.pageSize()
	for _, line := range v.text.window(page) {
		b.WriteString(v.styles.Normal.Render(line))
		b.WriteString("\n")
	}

	total := len(v.text.lines)
	if total <= page {
		return
	}
	pct := 0
	if top := v.text.top(page); top > 0 {
		pct = v.text.offset * 100 / top
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d (%d%%)",
		v.text.offset+1, min(v.text.offset+page, total), total, pct)))
}

// SetDimensions records the window size and rewraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.rewrap()
}

// Document returns the document being shown.
func (v *View) Document() *domain.Document {
	return v.document
}

// Content returns the raw extracted text.
func (v *View) Content() string {
	return v.content
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
