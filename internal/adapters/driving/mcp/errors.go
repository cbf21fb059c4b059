// Package mcp provides an MCP (Model Context Protocol) server adapter for Provena.
// It lets AI assistants extract content, trace claims and search platforms
// for the origin of a piece of content.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// errUnavailable is returned by tools whose port was not wired.
var errUnavailable = errors.New("mcp: tool is not available in this configuration")
