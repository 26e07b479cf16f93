package domain

import (
	"math"
	"time"
)

// Bounds for the user facing controls.
const (
	MinSpeed     = 1
	MaxSpeed     = 100
	DefaultSpeed = 50

	MinSize     = 5
	MaxSize     = 100
	DefaultSize = 30

	// Generated bar heights are uniform in [MinValue, MaxValue).
	MinValue = 20
	MaxValue = 320

	MinDelay = 5 * time.Millisecond
	MaxDelay = 200 * time.Millisecond
)

// ClampSpeed bounds speed to [MinSpeed, MaxSpeed].
func ClampSpeed(speed int) int {
	return clamp(speed, MinSpeed, MaxSpeed)
}

// ClampSize bounds size to [MinSize, MaxSize].
func ClampSize(size int) int {
	return clamp(size, MinSize, MaxSize)
}

// DelayForSpeed maps speed 1 (slow) .. 100 (fast) to a step delay of ~200ms .. 5ms
// using delay = max(5, 200 - speed*1.95) milliseconds.
func DelayForSpeed(speed int) time.Duration {
	ms := 200 - float64(ClampSpeed(speed))*1.95
	d := time.Duration(math.Round(ms*1000)) * time.Microsecond
	if d < MinDelay {
		return MinDelay
	}
	return d
}

// SpeedLabel returns the coarse label shown next to the speed control.
func SpeedLabel(speed int) string {
	switch {
	case speed < 30:
		return "Slow"
	case speed < 70:
		return "Medium"
	default:
		return "Fast"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
