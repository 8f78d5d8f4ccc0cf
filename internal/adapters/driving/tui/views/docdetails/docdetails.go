// Package docdetails renders the metadata card for one library
// document: identity, location on disk, size, chunk count, and index
// status.
package docdetails

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/trove/internal/core/domain"
)

// field is one labelled row of the card.
type field struct {
	label string
	value string
}

// View is the document details screen.
type View struct {
	styles *styles.Styles

	document *domain.Document
	err      error

	offset int
	width  int
	height int
	ready  bool
}

// NewView creates an empty details screen.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s}
}

// SetDocument replaces the displayed document and rewinds the scroll.
func (v *View) SetDocument(doc *domain.Document) {
	v.document = doc
	v.offset = 0
	v.err = nil
}

// Init implements the view contract. There is nothing to load; the app
// hands this screen a document before switching to it.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the details screen.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.ErrorOccurred:
		v.err = msg.Err
	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.offset > 0 {
			v.offset--
		}
	case "down", "j":
		if v.offset < v.maxOffset() {
			v.offset++
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}
	return v, nil
}

// fields flattens the document into display rows. Optional attributes
// appear only when the record carries them.
func (v *View) fields() []field {
	doc := v.document
	if doc == nil {
		return nil
	}

	rows := []field{
		{"ID", doc.ID},
		{"Filename", doc.Filename},
	}
	if doc.Title != "" {
		rows = append(rows, field{"Title", doc.Title})
	}

	kind := string(doc.FileType)
	if doc.Extension != "" {
		kind = fmt.Sprintf("%s (.%s)", doc.FileType, doc.Extension)
	}
	rows = append(rows,
		field{"Path", doc.Path},
		field{"Type", kind},
		field{"Size", humanize.Bytes(uint64(doc.Size))},
		field{"Chunks", strconv.Itoa(doc.ChunkCount)},
	)

	if !doc.ModifiedAt.IsZero() {
		rows = append(rows, field{"Modified", doc.ModifiedAt.Format("2006-01-02 15:04:05")})
	}
	if doc.ContentHash != "" {
		rows = append(rows, field{"Hash", shortHash(doc.ContentHash)})
	}

	rows = append(rows, field{"Status", doc.Status.String()})
	if doc.Status == domain.DocumentStatusFailed && doc.Error != "" {
		rows = append(rows, field{"Error", doc.Error})
	}
	return rows
}

// shortHash keeps enough of a content hash to compare by eye.
func shortHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}

// pageSize is how many rows fit between the header and the help line.
func (v *View) pageSize() int {
	size := v.height - 6
	if size < 1 {
		size = 1
	}
	return size
}

func (v *View) maxOffset() int {
	over := len(v.fields()) - v.pageSize()
	if over < 0 {
		return 0
	}
	return over
}

// View renders the details card.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document Details"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", ruleWidth(v.width)))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	case v.document == nil:
		b.WriteString(v.styles.Muted.Render("No document details available"))
		b.WriteString("\n\n")
	default:
		v.renderFields(&b)
	}

	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [esc] back"))
	return b.String()
}

func (v *View) renderFields(b *strings.Builder) {
	rows := v.fields()
	page := v.pageSize()

	end := v.offset + page
	if end > len(rows) {
		end = len(rows)
	}
	for _, row := range rows[v.offset:end] {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-12s", row.label+":")))
		b.WriteString(v.styles.Normal.Render(" " + row.value))
		b.WriteString("\n")
	}

	if len(rows) > page {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.offset+1, end, len(rows))))
	}
	b.WriteString("\n\n")
}

// ruleWidth sizes the separator under the title. The width is clamped
// so an unsized view still renders.
func ruleWidth(width int) int {
	const longest = 60
	width -= 4
	if width < 1 {
		return 1
	}
	if width > longest {
		return longest
	}
	return width
}

// SetDimensions sizes the screen.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Document returns the displayed document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Err reports the last load failure, if any.
func (v *View) Err() error {
	return v.err
}
