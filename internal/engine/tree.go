package engine

import "time"

// The sprout tree is the game's re-engagement surface: health decays with
// real time away and is derived on every read, never stored as truth.

// GrantBuffer is one protection grant. The kind→days mapping belongs to the
// economy collaborator and arrives here already resolved as data.
type GrantBuffer struct {
	Kind       string  `json:"kind"`
	BufferDays float64 `json:"buffer_days"`
	Consumed   bool    `json:"consumed"`
}

// ActiveBufferDays sums the buffer days of grants not yet consumed.
func ActiveBufferDays(grants []GrantBuffer) float64 {
	var days float64
	for _, g := range grants {
		if !g.Consumed {
			days += g.BufferDays
		}
	}
	return days
}

// CalculateTreeHealth maps elapsed days since the last refresh, less any
// active buffer, onto a discrete health percentage. Health never reaches 0:
// the tree wilts but does not die.
func CalculateTreeHealth(elapsedDaysSinceRefresh, activeBufferDays float64) int {
	if elapsedDaysSinceRefresh < 0 {
		elapsedDaysSinceRefresh = 0
	}
	effectiveDays := elapsedDaysSinceRefresh - activeBufferDays
	if effectiveDays < 0 {
		effectiveDays = 0
	}
	switch {
	case effectiveDays <= 2:
		return 100
	case effectiveDays <= 5:
		return 85
	case effectiveDays <= 10:
		return 60
	case effectiveDays <= 14:
		return 35
	case effectiveDays <= 21:
		return 15
	default:
		return 5
	}
}

// ElapsedDaysSince returns fractional days between lastRefresh and now,
// clamped to 0 when lastRefresh sits in the future (clock skew).
func ElapsedDaysSince(lastRefresh, now time.Time) float64 {
	d := now.Sub(lastRefresh).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
