package player

import "math"

// silentVolume is the beep volume used for level 0.
const silentVolume = -10

// levelToVolume converts a linear 0-1 level to beep's base-2 logarithmic
// volume: 1 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> silentVolume.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return silentVolume
	}
	if level >= 1 {
		return 0
	}
	return max(math.Log2(level), silentVolume)
}
