package keymap

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "transport", "output"
}

// All contains every key binding.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionNext, []string{"n"}, "Next source", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},

	// Transport
	{ActionPlayPause, []string{" ", "space"}, "Play/pause", "transport"},
	{ActionStop, []string{"s"}, "Stop", "transport"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -5s", "transport"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +5s", "transport"},

	// Output
	{ActionVolumeUp, []string{"+", "="}, "Volume up", "output"},
	{ActionVolumeDown, []string{"-"}, "Volume down", "output"},
	{ActionToggleMute, []string{"m"}, "Mute/unmute", "output"},
	{ActionRateUp, []string{"]"}, "Faster", "output"},
	{ActionRateDown, []string{"["}, "Slower", "output"},
	{ActionRateReset, []string{"backspace"}, "Normal speed", "output"},
	{ActionToggleLoop, []string{"L"}, "Loop on/off", "output"},
	{ActionFadeOut, []string{"f"}, "Fade out", "output"},
	{ActionFadeIn, []string{"F"}, "Fade in", "output"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
