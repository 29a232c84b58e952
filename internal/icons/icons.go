package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Play    string
	Pause   string
	Stop    string
	Loading string
	Error   string
	Loop    string
	Muted   string
	Volume  string
	Shared  string
}

var (
	nerdIcons = Icons{
		Play:    "", // nf-fa-play
		Pause:   "", // nf-fa-pause
		Stop:    "", // nf-fa-stop
		Loading: "󰦖",      // nf-md-progress_clock
		Error:   "", // nf-fa-warning
		Loop:    "󰑖",      // nf-md-repeat
		Muted:   "󰝟",      // nf-md-volume_mute
		Volume:  "󰕾",      // nf-md-volume_high
		Shared:  "󰌹",      // nf-md-link_variant
	}

	unicodeIcons = Icons{
		Play:    "▶",
		Pause:   "⏸",
		Stop:    "⏹",
		Loading: "⏳",
		Error:   "⚠",
		Loop:    "🔁",
		Muted:   "🔇",
		Volume:  "🔊",
		Shared:  "🔗",
	}

	noneIcons = Icons{
		Play:    ">",
		Pause:   "||",
		Stop:    "[]",
		Loading: "...",
		Error:   "!",
		Loop:    "[L]",
		Muted:   "[M]",
		Volume:  "vol",
		Shared:  "[G]",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	case StyleNone:
		current = noneIcons
	default:
		current = noneIcons
	}
}

func Play() string    { return current.Play }
func Pause() string   { return current.Pause }
func Stop() string    { return current.Stop }
func Loading() string { return current.Loading }
func Error() string   { return current.Error }

// Loop returns the loop indicator shown while looping.
func Loop() string { return current.Loop }

// Muted returns the indicator shown instead of the volume while muted.
func Muted() string { return current.Muted }

func Volume() string { return current.Volume }

// Shared marks a consumer running against the shared instance.
func Shared() string { return current.Shared }
