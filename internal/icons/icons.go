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
	Playing string
	Paused  string
	Stopped string
	Muted   string
	Volume  string
	Remote  string
}

var (
	nerdIcons = Icons{
		Playing: "\uf04b",      // nf-fa-play
		Paused:  "\uf04c",      // nf-fa-pause
		Stopped: "\uf04d",      // nf-fa-stop
		Muted:   "\U000f075f",  // nf-md-volume_mute
		Volume:  "\U000f057e",  // nf-md-volume_high
		Remote:  "\U000f059f ", // nf-md-web
	}

	unicodeIcons = Icons{
		Playing: "▶",
		Paused:  "⏸",
		Stopped: "■",
		Muted:   "🔇",
		Volume:  "🔊",
		Remote:  "🌐 ",
	}

	noneIcons = Icons{
		Playing: ">",
		Paused:  "||",
		Stopped: "[]",
		Muted:   "",
		Volume:  "",
		Remote:  "",
	}

	current = unicodeIcons
)

// Init selects the icon set. Unknown styles fall back to unicode.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleNone:
		current = noneIcons
	default:
		current = unicodeIcons
	}
}

// Playing returns the playing indicator.
func Playing() string { return current.Playing }

// Paused returns the paused indicator.
func Paused() string { return current.Paused }

// Stopped returns the stopped or idle indicator.
func Stopped() string { return current.Stopped }

// FormatVolume prefixes a volume label with the matching icon. The none
// style leaves it untouched.
func FormatVolume(label string, muted bool) string {
	icon := current.Volume
	if muted {
		icon = current.Muted
	}
	if icon == "" {
		return label
	}
	return icon + " " + label
}

// FormatSource prefixes remote source names with the remote icon.
func FormatSource(name string, remote bool) string {
	if !remote {
		return name
	}
	return current.Remote + name
}
