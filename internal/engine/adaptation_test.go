package engine

import (
	"math/rand"
	"testing"
)

func TestDecideAdaptation_HighScoreAlwaysSuggestsBreak(t *testing.T) {
	th := DefaultThresholds()
	mixes := [][]SessionSignal{
		nil,
		wrongSignals(5),
		signalsOf(SignalFast, SignalFast, SignalFast),
		signalsOf(SignalHelp, SignalSlow, SignalQuit),
	}
	for _, signals := range mixes {
		a := DecideAdaptation(0.85, signals, 3, th, nil)
		if a.Type != AdaptSuggestBreak || a.Severity != SeverityCritical {
			t.Fatalf("expected suggest_break/critical for score 0.85, got %v/%v", a.Type, a.Severity)
		}
	}
}

func TestDecideAdaptation_RisingFilterSimplifies(t *testing.T) {
	th := DefaultThresholds()
	a := DecideAdaptation(0.6, wrongSignals(3), 3, th, nil)
	if a.Type != AdaptSimplify || a.Severity != SeverityWarning {
		t.Fatalf("expected simplify/warning, got %v/%v", a.Type, a.Severity)
	}
	if a.DropToLevel >= 3 {
		t.Fatalf("expected drop below current level, got %v", a.DropToLevel)
	}
	if a.MessageCategory != MsgStruggling {
		t.Fatalf("three wrongs should pick the struggling copy, got %q", a.MessageCategory)
	}
}

func TestDecideAdaptation_SimplifyNeverDropsBelowOne(t *testing.T) {
	th := DefaultThresholds()
	a := DecideAdaptation(0.6, wrongSignals(3), 1, th, nil)
	if a.DropToLevel != 1 {
		t.Fatalf("expected drop clamped to level 1, got %v", a.DropToLevel)
	}
}

func TestDecideAdaptation_ElevatedButNotRisingEncourages(t *testing.T) {
	th := DefaultThresholds()
	a := DecideAdaptation(0.6, signalsOf(SignalWrong, SignalFast, SignalHelp), 3, th, nil)
	if a.Type != AdaptEncourage || a.Severity != SeverityInfo {
		t.Fatalf("expected encourage/info, got %v/%v", a.Type, a.Severity)
	}
}

func TestDecideAdaptation_FastAnswersEarnChallenge(t *testing.T) {
	th := DefaultThresholds()
	a := DecideAdaptation(0.2, signalsOf(SignalFast, SignalFast, SignalFast), 3, th, nil)
	if a.Type != AdaptChallenge || a.Severity != SeveritySuccess {
		t.Fatalf("expected challenge/success, got %v/%v", a.Type, a.Severity)
	}
	if a.IncreaseToLevel <= 3 {
		t.Fatalf("expected increase above current level, got %v", a.IncreaseToLevel)
	}
	if a.IncreaseToLevel > 5 {
		t.Fatalf("increase must clamp to 5, got %v", a.IncreaseToLevel)
	}
}

func TestDecideAdaptation_CleanRunCelebratesStreak(t *testing.T) {
	th := DefaultThresholds()
	a := DecideAdaptation(0.2, signalsOf(SignalHelp, SignalFast, SignalHelp), 3, th, nil)
	if a.Type != AdaptEncourage || a.Severity != SeveritySuccess {
		t.Fatalf("expected streak encouragement, got %v/%v", a.Type, a.Severity)
	}
	if a.MessageCategory != MsgStreak {
		t.Fatalf("expected streak copy, got %q", a.MessageCategory)
	}
}

func TestDecideAdaptation_QuietSessionDoesNothing(t *testing.T) {
	th := DefaultThresholds()
	a := DecideAdaptation(0.4, signalsOf(SignalWrong), 3, th, nil)
	if a.Type != AdaptNone || a.Severity != SeverityNone {
		t.Fatalf("expected none/none, got %v/%v", a.Type, a.Severity)
	}
}

func TestDecideAdaptation_MessageIndexIsDeterministicWithSeededSource(t *testing.T) {
	th := DefaultThresholds()
	a := DecideAdaptation(0.85, nil, 3, th, rand.New(rand.NewSource(42)))
	b := DecideAdaptation(0.85, nil, 3, th, rand.New(rand.NewSource(42)))
	if a.MessageIndex != b.MessageIndex {
		t.Fatalf("same seed must pick the same message: %d vs %d", a.MessageIndex, b.MessageIndex)
	}
	if a.MessageIndex < 0 || a.MessageIndex >= MessageCount(MsgTakeBreak) {
		t.Fatalf("message index out of range: %d", a.MessageIndex)
	}
}

func TestResolveMessage_OutOfRangeFallsBackToFirst(t *testing.T) {
	if got := ResolveMessage(MsgChallenge, 99); got != ResolveMessage(MsgChallenge, 0) {
		t.Fatalf("out-of-range index should fall back, got %q", got)
	}
	if ResolveMessage(MsgNone, 0) != "" {
		t.Fatalf("unknown category should resolve empty")
	}
}
