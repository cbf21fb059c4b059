// Package domain defines the core business entities for Provena.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - NormalizedContent: Text and metadata extracted from a URL
//   - Thought: A distinct claim extracted from content, with its embedding
//   - SearchInput / SearchResult: Cross-platform provenance search
//   - QuotaRecord / HistoryEntry: Per-user accounting
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
