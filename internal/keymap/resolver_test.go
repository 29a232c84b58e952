package keymap

import (
	"slices"
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
		{ActionPlayPause, []string{" "}, "Play/pause", "transport"},
		{ActionToggleMute, []string{"m"}, "Mute", "output"},
	})

	tests := []struct {
		key      string
		expected Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"m", ActionToggleMute},
		{"unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.Resolve(tt.key); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestResolver_KeysForDedupes(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionStop, []string{"s"}, "Stop", "transport"},
		{ActionStop, []string{"s", "x"}, "Stop", "global"},
	})

	keys := r.KeysFor(ActionStop)

	if !slices.Equal(keys, []string{"s", "x"}) {
		t.Errorf("KeysFor(stop) = %v, want [s x]", keys)
	}
	if r.KeysFor(ActionQuit) != nil {
		t.Errorf("KeysFor(unbound) = %v, want nil", r.KeysFor(ActionQuit))
	}
}

func TestResolver_DefaultBindings(t *testing.T) {
	r := NewResolver(All)

	tests := map[string]Action{
		" ":     ActionPlayPause,
		"space": ActionPlayPause,
		"s":     ActionStop,
		"m":     ActionToggleMute,
		"L":     ActionToggleLoop,
		"+":     ActionVolumeUp,
		"-":     ActionVolumeDown,
		"]":     ActionRateUp,
		"[":     ActionRateDown,
		"left":  ActionSeekBack,
		"right": ActionSeekForward,
		"f":     ActionFadeOut,
		"n":     ActionNext,
		"q":     ActionQuit,
	}
	for key, want := range tests {
		if got := r.Resolve(key); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestResolver_Help(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionPlayPause, []string{" ", "space"}, "Play/pause", "transport"},
		{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	})

	want := []string{"space  Play/pause", "q/ctrl+c  Quit"}
	if got := r.Help(); !slices.Equal(got, want) {
		t.Errorf("Help() = %q, want %q", got, want)
	}
}
