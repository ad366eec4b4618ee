package player

import "math"

// silentVolume is the beep volume used for level 0.
const silentVolume = -10

// clampLevel bounds a volume level to [0, 1].
func clampLevel(level float64) float64 {
	if math.IsNaN(level) {
		return 1
	}
	return min(max(level, 0), 1)
}

// levelToVolume converts a linear 0..1 level to beep's base-2 volume:
// 1 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> silent.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return silentVolume
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
