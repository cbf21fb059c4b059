package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	assert.Contains(t, ErrMissingSearchService.Error(), "search service")
}
