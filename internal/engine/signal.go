package engine

import (
	"time"

	"github.com/google/uuid"
)

type SignalType string

const (
	SignalWrong SignalType = "wrong"
	SignalHelp  SignalType = "help"
	SignalSlow  SignalType = "slow"
	SignalFast  SignalType = "fast"
	SignalQuit  SignalType = "quit"
)

// SessionSignal is one classified observation from a completed activity.
// Signals are append-only within a session; insertion order matters for
// streak and recency detection.
type SessionSignal struct {
	Type       SignalType `json:"type"`
	Timestamp  time.Time  `json:"timestamp"`
	ActivityID uuid.UUID  `json:"activity_id"`
}

// DetectSignals classifies a single activity outcome into zero or more
// signals. Each rule is an independent boolean check: several signals may
// fire for the same outcome.
func DetectSignals(correct bool, usedHelp bool, responseTimeMs, avgResponseTimeMs float64, th Thresholds) []SignalType {
	var out []SignalType
	if !correct {
		out = append(out, SignalWrong)
	}
	if usedHelp {
		out = append(out, SignalHelp)
	}
	if avgResponseTimeMs > 0 && responseTimeMs > avgResponseTimeMs*th.SlowMultiplier {
		out = append(out, SignalSlow)
	}
	if correct && avgResponseTimeMs > 0 && responseTimeMs < avgResponseTimeMs*th.FastMultiplier {
		out = append(out, SignalFast)
	}
	return out
}
