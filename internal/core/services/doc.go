// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters):
//
//   - ExtractionRouter: strategy chain with fallback
//   - TraceService: staged thought pipeline with quota and persistence
//   - PlatformRegistry and SearchService: cross-platform provenance search
//
// Services depend only on domain types and port interfaces.
package services
