// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/provena/internal/core/domain"
)

// SearchRequested is a command to trace an input across platforms.
type SearchRequested struct {
	Input domain.SearchInput
}

// SearchCompleted carries the combined result back to the model.
type SearchCompleted struct {
	Result *domain.SearchResult
	Err    error
}

// ExtractCompleted carries extracted page details for a selected URL.
type ExtractCompleted struct {
	URL     string
	Content *domain.NormalizedContent
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the input and results view.
	ViewSearch ViewType = iota
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
