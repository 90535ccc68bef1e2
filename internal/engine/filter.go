package engine

import (
	"math"
	"time"
)

// CalculateFilterScore aggregates recent session signals and longer-term
// profile stats into an affective filter score in [0,1]. The model is
// additive with per-component caps; intermediate sums may leave [0,1] and
// are only clamped at the end. The component weights are the observed
// production tuning, not a derived formula.
func CalculateFilterScore(profile LearnerProfile, signals []SessionSignal, th Thresholds) float64 {
	return calculateFilterScoreAt(profile, signals, th, time.Now().UTC())
}

func calculateFilterScoreAt(profile LearnerProfile, signals []SessionSignal, th Thresholds, now time.Time) float64 {
	score := 0.0

	streak := trailingWrongStreak(signals)
	if streak >= th.WrongStreakThreshold {
		score += 0.25
	} else if streak >= 2 {
		score += float64(streak) * 0.08
	}

	recent := recentSignals(signals, th.RecentWindow)
	if len(recent) > 0 {
		helpRate := float64(countSignals(recent, SignalHelp)) / float64(len(recent))
		score += math.Min(0.15, helpRate*0.5)
		score += math.Min(0.10, float64(countSignals(recent, SignalSlow))*0.03)
		score -= math.Min(0.10, float64(countSignals(recent, SignalFast))*0.02)
	}

	if profile.AvgConfidence < 0.5 {
		score += (0.5 - profile.AvgConfidence) * 0.30
	}
	score += profile.WrongAnswerRate * 0.10
	score += profile.HelpRequestRate * 0.05

	if profile.LastActivityAt == nil {
		// Never active: maximal inactivity contribution.
		score += 0.10
	} else {
		inactiveDays := now.Sub(*profile.LastActivityAt).Hours() / 24
		if excess := inactiveDays - th.InactivityDays; excess > 0 {
			score += math.Min(0.10, excess*0.02)
		}
	}

	return clamp01(score)
}

// IsFilterRising reports whether the short-window signal pattern indicates
// the filter is actively increasing, as opposed to merely being high.
func IsFilterRising(signals []SessionSignal, th Thresholds) bool {
	recent := recentSignals(signals, th.RecentWindow)
	wrongCount := countSignals(recent, SignalWrong)

	if trailingWrongStreak(recent) >= th.WrongStreakThreshold {
		return true
	}
	if countSignals(recent, SignalHelp) >= 2 && wrongCount >= 2 {
		return true
	}
	if countSignals(recent, SignalSlow) >= 2 && wrongCount >= 2 {
		return true
	}
	if countSignals(recent, SignalQuit) >= 1 && wrongCount >= 2 {
		return true
	}
	return false
}

// UpdatedFilterRisk blends a session's filter score into the long-run risk
// score with an 80/20 weighting, clamped to [0,1].
func UpdatedFilterRisk(current, sessionScore float64) float64 {
	return clamp01(current*0.8 + sessionScore*0.2)
}

// DecayFilterRisk decays the stored risk toward zero with inactivity. The
// decay saturates at ten days: longer gaps decay no further.
func DecayFilterRisk(current, daysSinceLastSession float64) float64 {
	if daysSinceLastSession < 0 {
		daysSinceLastSession = 0
	}
	return current * math.Pow(0.9, math.Min(daysSinceLastSession, 10))
}

// trailingWrongStreak counts consecutive wrong signals from the most recent
// signal backward. Any other signal type breaks the streak.
func trailingWrongStreak(signals []SessionSignal) int {
	streak := 0
	for i := len(signals) - 1; i >= 0; i-- {
		if signals[i].Type != SignalWrong {
			break
		}
		streak++
	}
	return streak
}

func recentSignals(signals []SessionSignal, window int) []SessionSignal {
	if window <= 0 || len(signals) <= window {
		return signals
	}
	return signals[len(signals)-window:]
}

func countSignals(signals []SessionSignal, t SignalType) int {
	n := 0
	for _, s := range signals {
		if s.Type == t {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampLevel(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
