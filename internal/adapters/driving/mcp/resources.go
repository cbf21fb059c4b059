package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/provena/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for Provena resources.
	uriScheme = "provena://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing platform searchers.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "platforms",
		Name:        "platforms",
		Description: "Platforms searched for content provenance",
		MIMEType:    "application/json",
	}, s.handlePlatformsResource)

	// Template for persisted traces.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "thoughts/{primaryId}",
		Name:        "trace-thoughts",
		Description: "A traced primary claim with its secondary claims",
		MIMEType:    "application/json",
	}, s.handleThoughtsResource)
}

// handlePlatformsResource returns the registered platform names.
func (s *Server) handlePlatformsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	names := []string{}
	if s.ports.Platforms != nil {
		names = append(names, s.ports.Platforms.Platforms()...)
	}

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling platforms: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleThoughtsResource returns a persisted trace.
func (s *Server) handleThoughtsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Trace == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract primaryId from URI: provena://thoughts/{primaryId}
	primaryID := extractPrimaryID(req.Params.URI)
	if primaryID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	primary, err := s.ports.Trace.GetPrimaryThought(ctx, primaryID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting primary thought: %w", err)
	}

	secondary, err := s.ports.Trace.GetSecondaryThoughts(ctx, primaryID)
	if err != nil {
		return nil, fmt.Errorf("getting secondary thoughts: %w", err)
	}

	data, err := json.MarshalIndent(struct {
		Primary   *domain.PrimaryThought `json:"primary"`
		Secondary []domain.Thought       `json:"secondary"`
	}{primary, secondary}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling thoughts: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractPrimaryID extracts the thought ID from a URI like provena://thoughts/{primaryId}.
func extractPrimaryID(uri string) string {
	const prefix = uriScheme + "thoughts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
