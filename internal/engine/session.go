package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ActivityResult is the immutable record of one completed activity.
type ActivityResult struct {
	ID             uuid.UUID   `json:"id"`
	ActivityType   string      `json:"activity_type"`
	ChunkIDs       []uuid.UUID `json:"chunk_ids"`
	Correct        bool        `json:"correct"`
	ResponseTimeMs float64     `json:"response_time_ms"`
	UsedHelp       bool        `json:"used_help"`
	Attempts       int         `json:"attempts"`
	Abandoned      bool        `json:"abandoned"`
	Timestamp      time.Time   `json:"timestamp"`
}

// SessionContext is the value threaded through one learner's session. Every
// transition returns a new value; the caller owns the current snapshot and
// may keep prior ones. Activities, signals, and adaptations only ever grow
// within a session and are discarded when it ends.
type SessionContext struct {
	SessionID          uuid.UUID        `json:"session_id"`
	UserID             uuid.UUID        `json:"user_id"`
	Topic              string           `json:"topic"`
	BaseTargetLevel    float64          `json:"base_target_level"`
	CurrentTargetLevel float64          `json:"current_target_level"`
	Activities         []ActivityResult `json:"activities"`
	FilterSignals      []SessionSignal  `json:"filter_signals"`
	Adaptations        []Adaptation     `json:"adaptations"`
	IsComplete         bool             `json:"is_complete"`
}

// NewSessionContext starts a session at the given target level.
func NewSessionContext(sessionID, userID uuid.UUID, topic string, initialTargetLevel float64) SessionContext {
	level := clampLevel(initialTargetLevel)
	return SessionContext{
		SessionID:          sessionID,
		UserID:             userID,
		Topic:              topic,
		BaseTargetLevel:    level,
		CurrentTargetLevel: level,
	}
}

// RecordActivity appends the result and its derived signals, re-evaluates
// the adaptation against the grown signal list, and applies any level change
// the adaptation carries. The input context is not mutated.
func RecordActivity(ctx SessionContext, result ActivityResult, profile LearnerProfile, th Thresholds, rng *rand.Rand) (SessionContext, Adaptation) {
	next := ctx
	next.Activities = append(copyActivities(ctx.Activities), result)
	next.FilterSignals = append(copySignals(ctx.FilterSignals), deriveSignals(ctx, result, th)...)
	next.Adaptations = copyAdaptations(ctx.Adaptations)

	score := CalculateFilterScore(profile, next.FilterSignals, th)
	adaptation := DecideAdaptation(score, next.FilterSignals, next.CurrentTargetLevel, th, rng)

	if adaptation.Type != AdaptNone {
		next.Adaptations = append(next.Adaptations, adaptation)
	}
	switch adaptation.Type {
	case AdaptSimplify:
		next.CurrentTargetLevel = adaptation.DropToLevel
	case AdaptChallenge:
		next.CurrentTargetLevel = adaptation.IncreaseToLevel
	}

	return next, adaptation
}

// EndSession marks the context complete. Terminal: no further transitions.
func EndSession(ctx SessionContext) SessionContext {
	next := ctx
	next.IsComplete = true
	return next
}

// ShouldEndSession decides whether the session has run its course: too many
// errors across the accumulated activities, or the estimated elapsed time
// has outgrown the planned duration.
func ShouldEndSession(ctx SessionContext, plannedDuration time.Duration, th Thresholds) (bool, string) {
	total := len(ctx.Activities)
	if total == 0 {
		return false, ""
	}

	wrong := 0
	for _, a := range ctx.Activities {
		if !a.Correct {
			wrong++
		}
	}
	if float64(wrong)/float64(total) > th.HighErrorRate {
		return true, "high_error_rate"
	}

	estimated := time.Duration(float64(total)*th.MinutesPerActivity*float64(time.Minute))
	if estimated > plannedDuration {
		return true, "time_budget"
	}

	return false, ""
}

// SessionPerformance folds the accumulated activities into the shape
// AdaptDifficulty consumes.
func SessionPerformance(ctx SessionContext) Performance {
	perf := Performance{Total: len(ctx.Activities)}
	var totalMs float64
	for _, a := range ctx.Activities {
		if a.Correct {
			perf.Correct++
		}
		if a.UsedHelp {
			perf.HelpUsedCount++
		}
		totalMs += a.ResponseTimeMs
	}
	if perf.Total > 0 {
		perf.AvgResponseTimeMs = totalMs / float64(perf.Total)
	}
	return perf
}

// deriveSignals classifies a result against the session's running average
// response time. The first activity has no baseline, so slow/fast cannot
// fire for it; wrong/help/quit are baseline-independent.
func deriveSignals(ctx SessionContext, result ActivityResult, th Thresholds) []SessionSignal {
	avgMs := averageResponseMs(ctx.Activities)
	types := DetectSignals(result.Correct, result.UsedHelp, result.ResponseTimeMs, avgMs, th)
	if result.Abandoned {
		types = append(types, SignalQuit)
	}
	signals := make([]SessionSignal, 0, len(types))
	for _, t := range types {
		signals = append(signals, SessionSignal{
			Type:       t,
			Timestamp:  result.Timestamp,
			ActivityID: result.ID,
		})
	}
	return signals
}

func averageResponseMs(activities []ActivityResult) float64 {
	if len(activities) == 0 {
		return 0
	}
	var total float64
	for _, a := range activities {
		total += a.ResponseTimeMs
	}
	return total / float64(len(activities))
}

func copyActivities(in []ActivityResult) []ActivityResult {
	out := make([]ActivityResult, len(in), len(in)+1)
	copy(out, in)
	return out
}

func copySignals(in []SessionSignal) []SessionSignal {
	out := make([]SessionSignal, len(in), len(in)+2)
	copy(out, in)
	return out
}

func copyAdaptations(in []Adaptation) []Adaptation {
	out := make([]Adaptation, len(in), len(in)+1)
	copy(out, in)
	return out
}
