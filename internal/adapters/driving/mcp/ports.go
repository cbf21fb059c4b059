package mcp

import (
	"github.com/custodia-labs/provena/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search finds content across platforms.
	Search driving.SearchService

	// Extraction turns URLs into normalised content.
	Extraction driving.ExtractionRouter

	// Trace runs the claim pipeline and the legacy search.
	Trace driving.TraceService

	// Platforms lists the registered platform searchers.
	Platforms driving.PlatformRegistry
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Extraction, Trace and Platforms are optional; their tools report unavailable.
	return nil
}
