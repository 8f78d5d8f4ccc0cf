// Package settings implements the configuration screen of the
// terminal interface. An overview pane summarises the active settings
// and opens one small form per group: embedding provider, chunking
// parameters, and search defaults.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

var errNotLoaded = errors.New("settings not loaded yet")

// pane identifies which part of the screen has focus.
type pane int

const (
	paneOverview pane = iota
	paneProvider
	paneChunking
	paneSearch
)

// Overview rows, in display order.
const (
	rowProvider = iota
	rowChunking
	rowSearch
	rowCount
)

// View is the settings screen.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error

	pane     pane
	row      int  // overview selection
	provider int  // provider list selection
	keyFocus bool // API key input has focus
	field    int  // chunking form field, 0 size 1 overlap

	apiKey    textinput.Model
	chunkSize textinput.Model
	overlap   textinput.Model
	limit     textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates the settings screen backed by settingsService.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	apiKey := textinput.New()
	apiKey.Placeholder = "sk-..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		apiKey:          apiKey,
		chunkSize:       numberInput("800", 6),
		overlap:         numberInput("200", 6),
		limit:           numberInput("10", 4),
	}
}

func numberInput(placeholder string, charLimit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = charLimit
	return in
}

// Init fetches the current settings.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: errNotLoaded}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings screen.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.settings = msg.Settings
		v.err = nil
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.closeForm()
		return v, v.load()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Esc backs out one level: form to overview, overview to menu.
	if msg.Type == tea.KeyEsc {
		if v.pane == paneOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.closeForm()
		return v, nil
	}

	switch v.pane {
	case paneProvider:
		return v.providerKey(msg)
	case paneChunking:
		return v.chunkingKey(msg)
	case paneSearch:
		return v.searchKey(msg)
	default:
		return v, v.overviewKey(msg)
	}
}

func (v *View) overviewKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if v.row > 0 {
			v.row--
		}
	case "down", "j":
		if v.row < rowCount-1 {
			v.row++
		}
	case "enter":
		return v.openForm(v.row)
	}
	return nil
}

// openForm enters the form behind an overview row, seeding its inputs
// from the loaded settings.
func (v *View) openForm(row int) tea.Cmd {
	switch row {
	case rowProvider:
		v.pane = paneProvider
		v.provider = v.currentProviderIndex()

	case rowChunking:
		v.pane = paneChunking
		v.field = 0
		if v.settings != nil {
			v.chunkSize.SetValue(strconv.Itoa(v.settings.Chunker.ChunkSize))
			v.overlap.SetValue(strconv.Itoa(v.settings.Chunker.Overlap))
		}
		return v.chunkSize.Focus()

	case rowSearch:
		v.pane = paneSearch
		if v.settings != nil {
			v.limit.SetValue(strconv.Itoa(v.settings.Search.DefaultLimit))
		}
		return v.limit.Focus()
	}
	return nil
}

func (v *View) providerKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	providers := domain.AllEmbeddingProviders()

	if v.keyFocus {
		switch msg.String() {
		case "tab", "shift+tab":
			v.keyFocus = false
			v.apiKey.Blur()
		case "enter":
			return v, v.saveProvider(providers[v.provider], v.apiKey.Value())
		default:
			var cmd tea.Cmd
			v.apiKey, cmd = v.apiKey.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.provider > 0 {
			v.provider--
		}
	case "down", "j":
		if v.provider < len(providers)-1 {
			v.provider++
		}
	case "tab":
		if providers[v.provider].RequiresAPIKey() {
			v.keyFocus = true
			return v, v.apiKey.Focus()
		}
	case "enter":
		chosen := providers[v.provider]
		if chosen.RequiresAPIKey() && v.apiKey.Value() == "" {
			// Collect the key before saving.
			v.keyFocus = true
			return v, v.apiKey.Focus()
		}
		return v, v.saveProvider(chosen, v.apiKey.Value())
	}
	return v, nil
}

func (v *View) chunkingKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		return v, v.toggleChunkField()
	case "enter":
		return v, v.saveChunking()
	}

	var cmd tea.Cmd
	if v.field == 0 {
		v.chunkSize, cmd = v.chunkSize.Update(msg)
	} else {
		v.overlap, cmd = v.overlap.Update(msg)
	}
	return v, cmd
}

func (v *View) toggleChunkField() tea.Cmd {
	if v.field == 0 {
		v.field = 1
		v.chunkSize.Blur()
		return v.overlap.Focus()
	}
	v.field = 0
	v.overlap.Blur()
	return v.chunkSize.Focus()
}

func (v *View) searchKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "enter" {
		return v, v.saveLimit()
	}
	var cmd tea.Cmd
	v.limit, cmd = v.limit.Update(msg)
	return v, cmd
}

// persist copies the loaded settings, applies mutate, and saves the
// copy. The screen returns to the overview when SettingsSaved comes
// back clean.
func (v *View) persist(mutate func(*domain.AppSettings)) tea.Cmd {
	svc := v.settingsService
	current := v.settings
	return func() tea.Msg {
		if svc == nil || current == nil {
			return messages.SettingsSaved{Err: errNotLoaded}
		}
		updated := *current
		mutate(&updated)
		return messages.SettingsSaved{Err: svc.Save(&updated)}
	}
}

func (v *View) saveProvider(provider domain.EmbeddingProvider, apiKey string) tea.Cmd {
	return v.persist(func(s *domain.AppSettings) {
		s.Embedding.Provider = provider
		s.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
		if apiKey != "" {
			s.Embedding.APIKey = apiKey
		}
	})
}

func (v *View) saveChunking() tea.Cmd {
	size, err := parseCount(v.chunkSize.Value(), "chunk size")
	if err != nil {
		return reportSaveError(err)
	}
	overlap, err := parseCount(v.overlap.Value(), "overlap")
	if err != nil {
		return reportSaveError(err)
	}
	return v.persist(func(s *domain.AppSettings) {
		s.Chunker.ChunkSize = size
		s.Chunker.Overlap = overlap
	})
}

func (v *View) saveLimit() tea.Cmd {
	limit, err := parseCount(v.limit.Value(), "result limit")
	if err != nil {
		return reportSaveError(err)
	}
	return v.persist(func(s *domain.AppSettings) {
		s.Search.DefaultLimit = limit
	})
}

func parseCount(raw, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", name)
	}
	return n, nil
}

func reportSaveError(err error) tea.Cmd {
	return func() tea.Msg {
		return messages.SettingsSaved{Err: err}
	}
}

// closeForm returns focus to the overview. The typed API key never
// survives leaving the form.
func (v *View) closeForm() {
	v.pane = paneOverview
	v.keyFocus = false
	v.field = 0
	v.apiKey.SetValue("")
	v.apiKey.Blur()
	v.chunkSize.Blur()
	v.overlap.Blur()
	v.limit.Blur()
}

func (v *View) currentProviderIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, p := range domain.AllEmbeddingProviders() {
		if p == v.settings.Embedding.Provider {
			return i
		}
	}
	return 0
}

// View renders the settings screen.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}
	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.pane {
	case paneProvider:
		b.WriteString(v.renderProviderPicker())
	case paneChunking:
		b.WriteString(v.renderChunkingForm())
	case paneSearch:
		b.WriteString(v.renderSearchForm())
	default:
		b.WriteString(v.renderOverview())
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(v.helpLine()))
	return b.String()
}

func (v *View) renderOverview() string {
	entries := []string{
		"Embedding: " + v.providerSummary(),
		fmt.Sprintf("Chunking: %d characters, %d overlap",
			v.settings.Chunker.ChunkSize, v.settings.Chunker.Overlap),
		fmt.Sprintf("Search: top %d results", v.settings.Search.DefaultLimit),
	}

	var b strings.Builder
	for i, entry := range entries {
		if i == v.row {
			b.WriteString(v.styles.Selected.Render("> " + entry))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + entry))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.settingsService != nil {
		if v.settingsService.IndexStale() {
			b.WriteString(v.styles.Warning.Render("Index stale. Rebuild to apply the current settings."))
		} else {
			b.WriteString(v.styles.Success.Render("Index up to date"))
		}
	}
	return b.String()
}

func (v *View) providerSummary() string {
	emb := v.settings.Embedding
	if emb.Provider == "" {
		return "not set"
	}
	summary := fmt.Sprintf("%s (%s)", emb.Provider.Description(), emb.Model)
	if emb.IsConfigured() {
		return summary + " " + v.styles.Success.Render("[configured]")
	}
	return summary + " " + v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderProviderPicker() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Embedding provider"))
	b.WriteString("\n\n")

	providers := domain.AllEmbeddingProviders()
	defaults := domain.DefaultEmbeddingModels()
	for i, provider := range providers {
		label := provider.Description()
		if provider == v.settings.Embedding.Provider {
			label += " (current)"
		}
		if i == v.provider && !v.keyFocus {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")

		if model, ok := defaults[provider]; ok {
			b.WriteString(v.styles.Muted.Render("    model " + model))
			b.WriteString("\n")
		}
	}

	if providers[v.provider].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API key"))
		b.WriteString("\n")
		b.WriteString(v.apiKey.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderChunkingForm() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Chunking"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render("Chunk size (characters)"))
	b.WriteString("\n")
	b.WriteString(v.chunkSize.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render("Overlap (characters)"))
	b.WriteString("\n")
	b.WriteString(v.overlap.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Overlap must stay below the chunk size. Saving marks the index stale."))
	b.WriteString("\n")
	return b.String()
}

func (v *View) renderSearchForm() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Search defaults"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render("Result limit"))
	b.WriteString("\n")
	b.WriteString(v.limit.View())
	b.WriteString("\n")
	return b.String()
}

func (v *View) helpLine() string {
	switch v.pane {
	case paneProvider:
		if v.keyFocus {
			return "[tab] provider list  [enter] save  [esc] back"
		}
		return "[j/k] navigate  [tab] API key  [enter] select  [esc] back"
	case paneChunking:
		return "[tab] next field  [enter] save  [esc] back"
	case paneSearch:
		return "[enter] save  [esc] back"
	default:
		return "[j/k] navigate  [enter] edit  [esc] back"
	}
}

// SetDimensions sizes the screen.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset discards transient state so the screen starts clean on entry.
func (v *View) Reset() {
	v.closeForm()
	v.row = 0
	v.err = nil
	v.chunkSize.SetValue("")
	v.overlap.SetValue("")
	v.limit.SetValue("")
}
