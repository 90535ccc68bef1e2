package engine

import (
	"math"
	"math/rand"
)

type AdaptationType string

const (
	AdaptNone         AdaptationType = "none"
	AdaptSimplify     AdaptationType = "simplify"
	AdaptEncourage    AdaptationType = "encourage"
	AdaptChallenge    AdaptationType = "challenge"
	AdaptSuggestBreak AdaptationType = "suggest_break"
	AdaptChangeTopic  AdaptationType = "change_topic"
)

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Adaptation is the intervention decision for one session step. Once
// produced it is never mutated; a later step produces a new value. Message
// text is a presentation concern: the engine only emits a category and a
// picked index so callers can resolve wording while tests stay
// deterministic on type/severity/category.
type Adaptation struct {
	Type     AdaptationType `json:"type"`
	Severity Severity       `json:"severity"`

	MessageCategory MessageCategory `json:"message_category"`
	MessageIndex    int             `json:"message_index"`

	// DropToLevel is set for simplify, IncreaseToLevel for challenge.
	DropToLevel     float64 `json:"drop_to_level,omitempty"`
	IncreaseToLevel float64 `json:"increase_to_level,omitempty"`

	// FilterScore is the score the decision was made against.
	FilterScore float64 `json:"filter_score"`
}

// DecideAdaptation selects an intervention as a strict priority chain over
// the recent signal window; the first matching rule wins. rng may be nil,
// in which case the first message of the category is picked.
func DecideAdaptation(filterScore float64, signals []SessionSignal, currentLevel float64, th Thresholds, rng *rand.Rand) Adaptation {
	recent := recentSignals(signals, th.RecentWindow)
	wrongCount := countSignals(recent, SignalWrong)
	helpCount := countSignals(recent, SignalHelp)
	fastCount := countSignals(recent, SignalFast)

	if filterScore > th.BreakScore {
		return Adaptation{
			Type:            AdaptSuggestBreak,
			Severity:        SeverityCritical,
			MessageCategory: MsgTakeBreak,
			MessageIndex:    pickIndex(MsgTakeBreak, rng),
			FilterScore:     filterScore,
		}
	}

	if IsFilterRising(signals, th) && filterScore > th.SimplifyScore {
		category := MsgSimplify
		if wrongCount >= 3 {
			category = MsgStruggling
		}
		return Adaptation{
			Type:            AdaptSimplify,
			Severity:        SeverityWarning,
			MessageCategory: category,
			MessageIndex:    pickIndex(category, rng),
			DropToLevel:     math.Max(1, currentLevel-th.LevelStep),
			FilterScore:     filterScore,
		}
	}

	if filterScore > th.SimplifyScore {
		category := MsgMistakesOK
		if helpCount > wrongCount {
			category = MsgKeepGoing
		}
		return Adaptation{
			Type:            AdaptEncourage,
			Severity:        SeverityInfo,
			MessageCategory: category,
			MessageIndex:    pickIndex(category, rng),
			FilterScore:     filterScore,
		}
	}

	if filterScore < th.ChallengeScore && fastCount >= 3 {
		return Adaptation{
			Type:            AdaptChallenge,
			Severity:        SeveritySuccess,
			MessageCategory: MsgChallenge,
			MessageIndex:    pickIndex(MsgChallenge, rng),
			IncreaseToLevel: math.Min(5, currentLevel+th.LevelStep),
			FilterScore:     filterScore,
		}
	}

	if filterScore < th.ChallengeScore && trailingWrongStreak(signals) == 0 && len(recent) >= 3 && wrongCount == 0 {
		return Adaptation{
			Type:            AdaptEncourage,
			Severity:        SeveritySuccess,
			MessageCategory: MsgStreak,
			MessageIndex:    pickIndex(MsgStreak, rng),
			FilterScore:     filterScore,
		}
	}

	return Adaptation{
		Type:        AdaptNone,
		Severity:    SeverityNone,
		FilterScore: filterScore,
	}
}

func pickIndex(category MessageCategory, rng *rand.Rand) int {
	n := MessageCount(category)
	if n <= 1 || rng == nil {
		return 0
	}
	return rng.Intn(n)
}
