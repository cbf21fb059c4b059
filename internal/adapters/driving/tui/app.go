package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/provena/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/provena/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/provena/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/provena/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	searchView  *search.View
	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingSearchService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		searchView:  search.NewView(s, km, ports.Search, ports.Extraction),
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// WithUser sets the user searches are charged to.
func (a *App) WithUser(userID string) *App {
	a.searchView.WithUser(userID)
	return a
}

// WithQuery pre-fills the input, typically from a command line argument.
func (a *App) WithQuery(query string) *App {
	a.searchView.SetQuery(query)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("provena"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if a.currentView == messages.ViewHelp {
			// Any key closes help.
			a.currentView = messages.ViewSearch
			return a, nil
		}

		// Bare q and ? only mean something when not typing.
		if !a.searchView.InputFocused() && !a.searchView.MenuOpen() {
			switch {
			case key.Matches(msg, a.keymap.Quit):
				return a, tea.Quit
			case key.Matches(msg, a.keymap.Help):
				a.currentView = messages.ViewHelp
				return a, nil
			}
		}

		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	a.searchView, cmd = a.searchView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewHelp {
		return a.renderHelp()
	}
	return a.searchView.View()
}

func (a *App) renderHelp() string {
	lines := []string{a.styles.Title.Render("Keys"), ""}
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, a.styles.Label.Render(h.Key)+a.styles.Normal.Render(h.Desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines, a.styles.Muted.Render("Press any key to return."))
	return strings.Join(lines, "\n")
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SearchView returns the trace view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}

// Run starts the Bubbletea program and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}
