package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.SourceCount())
	assert.Nil(t, bar.Init())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_UpdateIgnoresKeys(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_SpinnerOnlyTicksWhileAsking(t *testing.T) {
	bar := NewBar(nil, nil)
	tick := spinner.TickMsg{ID: bar.spinner.ID()}

	_, cmd := bar.Update(tick)
	assert.Nil(t, cmd, "idle bar does not tick")

	require.NotNil(t, bar.StartAsking())
	assert.Equal(t, StateAsking, bar.State())

	_, cmd = bar.Update(tick)
	assert.NotNil(t, cmd)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains string
	}{
		{name: "ready", setup: func(*Bar) {}, contains: "Ready"},
		{name: "ready with message", setup: func(b *Bar) { b.SetMessage("12 countries") }, contains: "12 countries"},
		{name: "asking", setup: func(b *Bar) { b.StartAsking() }, contains: "Thinking..."},
		{name: "error", setup: func(b *Bar) {
			b.SetState(StateError)
			b.SetMessage("index unavailable")
		}, contains: "Error: index unavailable"},
		{name: "help", setup: func(b *Bar) { b.SetState(StateHelp) }, contains: "Help"},
		{name: "no sources", setup: func(b *Bar) { b.SetState(StateAnswered) }, contains: "No sources"},
		{name: "one source", setup: func(b *Bar) {
			b.SetState(StateAnswered)
			b.SetSourceCount(1)
		}, contains: "1 source"},
		{name: "sources", setup: func(b *Bar) {
			b.SetState(StateAnswered)
			b.SetSourceCount(3)
		}, contains: "3 sources"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)

			assert.Contains(t, bar.View(), tt.contains)
		})
	}
}

func TestBar_HintsFollowState(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)

	assert.Len(t, bar.bindings(), len(km.ShortHelp()))

	bar.SetState(StateAnswered)
	assert.Equal(t, km.AnswerHelp()[0].Keys(), bar.bindings()[0].Keys())
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetSourceCount(2)
	bar.SetWidth(120)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.SourceCount())
	assert.Equal(t, 120, bar.Width())
}
