// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionNext Action = "next_source"
	ActionHelp Action = "help"

	// Transport
	ActionPlayPause   Action = "play_pause"
	ActionStop        Action = "stop"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"

	// Output
	ActionVolumeUp   Action = "volume_up"
	ActionVolumeDown Action = "volume_down"
	ActionToggleMute Action = "toggle_mute"
	ActionRateUp     Action = "rate_up"
	ActionRateDown   Action = "rate_down"
	ActionRateReset  Action = "rate_reset"
	ActionToggleLoop Action = "toggle_loop"
	ActionFadeOut    Action = "fade_out"
	ActionFadeIn     Action = "fade_in"
)
