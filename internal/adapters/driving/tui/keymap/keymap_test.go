package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"ctrl+c"}},
		{"help", km.Help, []string{"f1"}},
		{"back", km.Back, []string{"esc"}},
		{"ask", km.Ask, []string{"enter"}},
		{"next country", km.NextCountry, []string{"tab"}},
		{"prev country", km.PrevCountry, []string{"shift+tab"}},
		{"clear country", km.ClearCountry, []string{"ctrl+x"}},
		{"up", km.Up, []string{"up"}},
		{"down", km.Down, []string{"down"}},
		{"scroll up", km.ScrollUp, []string{"pgup", "ctrl+u"}},
		{"scroll down", km.ScrollDown, []string{"pgdown", "ctrl+d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestDefaultKeyMap_NoPrintableKeys(t *testing.T) {
	km := DefaultKeyMap()

	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				assert.Greater(t, len(k), 1, "key %q would be swallowed by the question input", k)
			}
		}
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 4)
	assert.Equal(t, km.Ask.Keys(), help[0].Keys())
	assert.Equal(t, km.Quit.Keys(), help[3].Keys())
}

func TestKeyMap_AnswerHelp(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.AnswerHelp(), 4)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("tab", km.NextCountry))
	assert.True(t, Matches("ctrl+d", km.ScrollDown))
	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("", km.Ask))
}
