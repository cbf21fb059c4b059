package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/provena/internal/adapters/driving/tui/styles"
)

func TestNewTraceInput(t *testing.T) {
	in := NewTraceInput(nil)

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Equal(t, 50, in.Width())
	assert.Empty(t, in.Value())
}

func TestTraceInput_Init(t *testing.T) {
	in := NewTraceInput(styles.DefaultStyles())
	assert.NotNil(t, in.Init())
}

func TestTraceInput_SetValueAndReset(t *testing.T) {
	in := NewTraceInput(nil)

	in.SetValue("https://example.com/story")
	assert.Equal(t, "https://example.com/story", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestTraceInput_FocusAndBlur(t *testing.T) {
	in := NewTraceInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestTraceInput_SetWidth(t *testing.T) {
	in := NewTraceInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())

	in.SetWidth(10)
	assert.Equal(t, 10, in.Width())
}

func TestTraceInput_UpdateTypesRunes(t *testing.T) {
	in := NewTraceInput(nil)

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("moon")})
	assert.Equal(t, "moon", in.Value())
}

func TestTraceInput_View(t *testing.T) {
	in := NewTraceInput(nil)
	assert.Contains(t, in.View(), "Trace:")
}
