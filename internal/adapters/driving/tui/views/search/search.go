// Package search provides the trace view for the TUI.
package search

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/provena/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/provena/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/provena/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/provena/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/provena/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/provena/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
)

// Action menu entries.
const (
	ActionTrace   = "Trace this URL"
	ActionDetails = "Show page details"
	ActionCancel  = "Cancel"
)

// ActionMenu is a small selection overlay for the selected appearance.
type ActionMenu struct {
	actions  []string
	selected int
	row      list.Row
}

// View is the trace view: input, appearance list, detail pane and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.TraceInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	extraction    driving.ExtractionRouter
	ctx           context.Context
	userID        string

	result     *domain.SearchResult
	details    *domain.NormalizedContent
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
	actionMenu *ActionMenu
}

// NewView creates a new trace view. extraction may be nil, which hides
// the details action.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	extraction driving.ExtractionRouter,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewTraceInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		extraction:    extraction,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithUser sets the user searches are charged to.
func (v *View) WithUser(userID string) *View {
	v.userID = userID
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the trace view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ExtractCompleted:
		v.handleExtractCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.actionMenu != nil {
		return v.handleActionMenuKey(msg)
	}

	if v.focusInput {
		if key.Matches(msg, v.keymap.Trace) {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			return v, v.startSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Back):
		v.focusInput = true
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Open):
		if row := v.list.SelectedRow(); row != nil {
			v.actionMenu = &ActionMenu{actions: v.actionsFor(), row: *row}
		}
		return v, nil
	case key.Matches(msg, v.keymap.NewTrace):
		v.focusInput = true
		v.input.SetValue("")
		v.details = nil
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
		v.details = nil
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
		v.details = nil
	case key.Matches(msg, v.keymap.Top):
		v.list.SetSelected(0)
		v.details = nil
	case key.Matches(msg, v.keymap.Bottom):
		v.list.SetSelected(v.list.Count() - 1)
		v.details = nil
	}
	return v, nil
}

func (v *View) actionsFor() []string {
	if v.extraction == nil {
		return []string{ActionTrace, ActionCancel}
	}
	return []string{ActionTrace, ActionDetails, ActionCancel}
}

func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	menu := v.actionMenu
	switch {
	case key.Matches(msg, v.keymap.Back):
		v.actionMenu = nil
	case key.Matches(msg, v.keymap.Open):
		v.actionMenu = nil
		return v.executeAction(menu.actions[menu.selected], menu.row)
	case key.Matches(msg, v.keymap.Up):
		if menu.selected > 0 {
			menu.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if menu.selected < len(menu.actions)-1 {
			menu.selected++
		}
	}
	return v, nil
}

func (v *View) executeAction(action string, row list.Row) (*View, tea.Cmd) {
	switch action {
	case ActionTrace:
		v.input.SetValue(row.URL)
		return v, v.startSearch(row.URL)
	case ActionDetails:
		v.statusbar.SetMessage("Extracting " + row.URL)
		return v, v.performExtract(row.URL)
	}
	return v, nil
}

func (v *View) startSearch(query string) tea.Cmd {
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("")
	v.focusInput = false
	v.input.Blur()
	v.details = nil
	return v.performSearch(DetectInput(query))
}

// DetectInput treats well-formed URLs as url inputs and everything else
// as text.
func DetectInput(content string) domain.SearchInput {
	in := domain.SearchInput{Kind: domain.InputKindURL, Content: content}
	if !in.IsWellFormed() {
		in.Kind = domain.InputKindText
	}
	return in
}

func (v *View) performSearch(in domain.SearchInput) tea.Cmd {
	ctx, svc, user := v.ctx, v.searchService, v.userID
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		result, err := svc.Search(ctx, in, user)
		return messages.SearchCompleted{Result: result, Err: err}
	}
}

func (v *View) performExtract(rawURL string) tea.Cmd {
	ctx, router := v.ctx, v.extraction
	return func() tea.Msg {
		content, err := router.Extract(ctx, rawURL)
		return messages.ExtractCompleted{URL: rawURL, Content: content, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.result = msg.Result
	v.list.SetRows(list.RowsFromResult(msg.Result))
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	if msg.Result != nil {
		v.statusbar.SetSummary(v.list.Count(), msg.Result.ConfidenceScore, len(msg.Result.Platforms))
	}

	// Nothing to browse, so go straight back to typing.
	v.focusInput = v.list.IsEmpty()
	if v.focusInput {
		v.input.Focus()
	} else {
		v.input.Blur()
	}
}

func (v *View) handleExtractCompleted(msg messages.ExtractCompleted) {
	v.statusbar.SetMessage("")
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.details = msg.Content
	if v.statusbar.State() == status.StateError {
		v.statusbar.SetState(status.StateResults)
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the trace view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("Provena"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.result != nil && v.list.IsEmpty() && len(v.result.SuggestedSearches) > 0 {
		sections = append(sections, "", v.styles.Subtitle.Render("Try"))
		for _, s := range v.result.SuggestedSearches {
			sections = append(sections, v.styles.Muted.Render("  "+s))
		}
	}

	if v.details != nil {
		sections = append(sections, "", v.renderDetails())
	}

	if v.actionMenu != nil {
		sections = append(sections, "", v.renderActionMenu())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderDetails() string {
	d := v.details
	field := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return v.styles.Label.Render(label) + v.styles.Normal.Render(value)
	}

	lines := []string{
		field("Platform", d.Platform.String()),
		field("Title", d.Title),
		field("Author", d.Author),
	}
	if d.PublishedAt != nil {
		lines = append(lines, field("Published", d.PublishedAt.UTC().Format("2006-01-02 15:04")))
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (v *View) renderActionMenu() string {
	lines := make([]string, 0, len(v.actionMenu.actions))
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+action))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+action))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current input value.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input value.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Result returns the last successful search result.
func (v *View) Result() *domain.SearchResult {
	return v.result
}

// Rows returns the appearances currently listed.
func (v *View) Rows() []list.Row {
	return v.list.Rows()
}

// SelectedIndex returns the index of the selected appearance.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Details returns the extracted details for the selected appearance, if loaded.
func (v *View) Details() *domain.NormalizedContent {
	return v.details
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// MenuOpen reports whether the action menu is showing.
func (v *View) MenuOpen() bool {
	return v.actionMenu != nil
}

// Reset returns the view to an empty input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetRows(nil)
	v.result = nil
	v.details = nil
	v.err = nil
	v.actionMenu = nil
	v.statusbar.Clear()
}
