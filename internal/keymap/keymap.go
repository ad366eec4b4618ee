package keymap

import "strings"

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback" or "open"
}

// All contains every monitor binding, in help order.
var All = []Binding{
	// Playback
	{ActionPlayPause, []string{" "}, "play/pause", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "seek -5s", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "seek +5s", "playback"},
	{ActionVolumeDown, []string{"-"}, "volume -", "playback"},
	{ActionVolumeUp, []string{"+", "="}, "volume +", "playback"},
	{ActionToggleMute, []string{"m"}, "mute", "playback"},
	{ActionRateDown, []string{"["}, "slower", "playback"},
	{ActionRateUp, []string{"]"}, "faster", "playback"},
	{ActionStop, []string{"s"}, "stop", "playback"},

	// Global
	{ActionOpen, []string{"o"}, "open", "global"},
	{ActionQuit, []string{"q", "ctrl+c"}, "quit", "global"},

	// Open prompt
	{ActionConfirm, []string{"enter"}, "load and play", "open"},
	{ActionCancel, []string{"esc"}, "cancel", "open"},
}

// ByContext returns the bindings of one context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, b := range All {
		if b.Context == context {
			result = append(result, b)
		}
	}
	return result
}

// Help renders bindings as a one-line legend using the first key of each.
func Help(bindings []Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if len(b.Keys) == 0 {
			continue
		}
		parts = append(parts, displayKey(b.Keys[0])+" "+b.Description)
	}
	return strings.Join(parts, " · ")
}

func displayKey(key string) string {
	switch key {
	case " ":
		return "space"
	case "left":
		return "←"
	case "right":
		return "→"
	}
	return key
}
