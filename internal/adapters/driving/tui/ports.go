// Package tui provides an interactive terminal interface for provena.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/provena/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Search runs the platform fan-out for an input.
	Search driving.SearchService

	// Extraction is optional. When set, the detail pane can pull the
	// title and author of the selected URL.
	Extraction driving.ExtractionRouter
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchService, extraction driving.ExtractionRouter) *Ports {
	return &Ports{
		Search:     search,
		Extraction: extraction,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
