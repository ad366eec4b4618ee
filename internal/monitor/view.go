package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/starlight/internal/icons"
	"github.com/llehouerou/starlight/internal/keymap"
	"github.com/llehouerou/starlight/internal/playback"
	"github.com/llehouerou/starlight/internal/source"
)

var (
	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// View implements tea.Model.
func (m Model) View() string {
	st := m.status
	inner := m.width - 4

	lines := []string{
		titleStyle.Render(title(st)),
		subtleStyle.Render(details(st)),
		m.progressLine(st, inner),
		subtleStyle.Render(levels(st)),
	}

	if m.opening {
		lines = append(lines, "Open: "+m.input.View())
	} else if m.lastErr != "" {
		lines = append(lines, errorStyle.Render(m.lastErr))
	} else if m.notice != "" {
		lines = append(lines, subtleStyle.Render(m.notice))
	}

	help := keymap.Help(append(keymap.ByContext("playback"), keymap.ByContext("global")...))
	if m.opening {
		help = keymap.Help(keymap.ByContext("open"))
	}
	return boxStyle.Width(m.width-2).Render(strings.Join(lines, "\n")) + "\n" + subtleStyle.Render(help) + "\n"
}

func title(st playback.Status) string {
	if st.Info != nil && st.Info.Title != "" {
		if st.Info.Artist != "" {
			return st.Info.Artist + " - " + st.Info.Title
		}
		return st.Info.Title
	}
	if st.Source != "" {
		return icons.FormatSource(displaySource(st.Source), source.IsRemote(st.Source))
	}
	return "Nothing loaded"
}

func details(st playback.Status) string {
	var parts []string
	if st.Loading {
		parts = append(parts, "loading…")
	}
	if info := st.Info; info != nil {
		if info.Album != "" {
			parts = append(parts, info.Album)
		}
		if info.Format != "" {
			parts = append(parts, info.Format)
		}
		if info.SampleRate > 0 {
			parts = append(parts, humanize.SIWithDigits(float64(info.SampleRate), 1, "Hz"))
		}
		if info.BitDepth > 0 {
			parts = append(parts, fmt.Sprintf("%d-bit", info.BitDepth))
		}
	}
	return strings.Join(parts, " · ")
}

func (m Model) progressLine(st playback.Status, width int) string {
	icon := icons.Stopped()
	switch st.State {
	case playback.StatePlaying:
		icon = icons.Playing()
	case playback.StatePaused:
		icon = icons.Paused()
	}

	pos := formatDuration(st.Position)
	dur := "--:--"
	if st.Duration > 0 {
		dur = formatDuration(st.Duration)
	}

	fixed := lipgloss.Width(icon) + lipgloss.Width(pos) + lipgloss.Width(dur) + 6
	barWidth := width - fixed
	if barWidth < 3 {
		return icon + "  " + pos + " / " + dur
	}

	var ratio float64
	if st.Duration > 0 {
		ratio = min(float64(st.Position)/float64(st.Duration), 1)
	}
	bar := m.bar
	bar.Width = barWidth
	return icon + "  " + pos + "  " + bar.ViewAs(ratio) + "  " + dur
}

func levels(st playback.Status) string {
	vol := icons.FormatVolume(fmt.Sprintf("vol %3d%%", int(st.Volume*100+0.5)), false)
	if st.Muted {
		vol = icons.FormatVolume("muted", true)
	}
	return fmt.Sprintf("%s · rate %.2fx · %s", vol, st.Rate, st.State)
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
