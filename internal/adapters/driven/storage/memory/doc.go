// Package memory provides in-memory implementations of the storage ports.
// They back tests and the "memory" storage backend. Nothing survives a restart.
package memory
