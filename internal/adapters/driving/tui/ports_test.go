package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPorts(t *testing.T) {
	search := &MockSearchService{}
	extraction := &MockExtractionRouter{}

	ports := NewPorts(search, extraction)

	assert.Same(t, search, ports.Search)
	assert.Same(t, extraction, ports.Extraction)
}

func TestPorts_Validate(t *testing.T) {
	assert.NoError(t, (&Ports{Search: &MockSearchService{}}).Validate())
	assert.ErrorIs(t, (&Ports{Extraction: &MockExtractionRouter{}}).Validate(), ErrMissingSearchService)
}
