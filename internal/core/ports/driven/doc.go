// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: One extraction strategy (video, article, browser)
//   - PlatformSearcher: One platform-specific provenance searcher
//   - KeyValueStore: Thought persistence
//   - QuotaStore: Per-user trace quota counters
//   - ResultCache: Search result cache keyed by input fingerprint
//   - RateLimiter: Per-user platform search limiter
//   - ConfigStore: Application configuration
//
// # Provider Interfaces
//
// The trace pipeline fails with domain.ErrLLMUnavailable and friends when these are nil:
//
//   - LLMService: Completion calls for thought extraction, ranking and classification
//   - EmbeddingService: Thought embeddings
//   - EvidenceSearcher: Web search evidence for the primary thought
//
// # Optional Interfaces
//
//   - HistoryStore: Search history. Nil disables history.
//   - PromptStore: Editable prompt templates. Nil uses built-in prompts.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or platform package
package driven
