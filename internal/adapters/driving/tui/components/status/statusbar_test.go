package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/trove/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
	assert.False(t, bar.Stale())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilArguments(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_Setters(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetState(StateSearching)
	bar.SetMessage("working")
	bar.SetResultCount(42)
	bar.SetStale(true)
	bar.SetWidth(120)

	assert.Equal(t, StateSearching, bar.State())
	assert.Equal(t, "working", bar.Message())
	assert.Equal(t, 42, bar.ResultCount())
	assert.True(t, bar.Stale())
	assert.Equal(t, 120, bar.Width())
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(10)
	bar.SetStale(true)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
	assert.False(t, bar.Stale())
}

func TestBar_View(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*Bar)
		want  []string
	}{
		{
			name:  "ready",
			setup: func(*Bar) {},
			want:  []string{"Ready", "quit"},
		},
		{
			name:  "searching",
			setup: func(b *Bar) { b.SetState(StateSearching) },
			want:  []string{"Searching"},
		},
		{
			name: "error with message",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("connection failed")
			},
			want: []string{"Error: connection failed"},
		},
		{
			name:  "error without message",
			setup: func(b *Bar) { b.SetState(StateError) },
			want:  []string{"Error"},
		},
		{
			name: "result count",
			setup: func(b *Bar) {
				b.SetState(StateResults)
				b.SetResultCount(5)
			},
			want: []string{"5 results"},
		},
		{
			name:  "message overrides ready text",
			setup: func(b *Bar) { b.SetMessage("Copied to clipboard") },
			want:  []string{"Copied to clipboard"},
		},
		{
			name:  "stale badge",
			setup: func(b *Bar) { b.SetStale(true) },
			want:  []string{"index stale", "Ready"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			tc.setup(bar)

			view := bar.View()

			for _, want := range tc.want {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestBar_View_ResultsModeSwitchesHints(t *testing.T) {
	bar := NewBar(nil, nil)

	// Typing mode shows the short hint set.
	assert.Contains(t, bar.View(), "help")

	bar.SetState(StateResults)
	bar.SetResultCount(3)

	view := bar.View()
	assert.Contains(t, view, "new search")
	assert.Contains(t, view, "actions")
	assert.Contains(t, view, "back")
}

func TestBar_View_PadsLeftAndRightApart(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetMessage("left text")

	view := bar.View()

	assert.Contains(t, view, "left text")
	assert.Contains(t, view, "quit")
}
