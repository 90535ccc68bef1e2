package engine

// Thresholds holds every tuning knob the decision engine reads. Callers pass
// an explicit value into each entry point; there is no package-level default
// that can be mutated at runtime.
type Thresholds struct {
	// Signal detection
	SlowMultiplier float64
	FastMultiplier float64

	// Filter scoring
	WrongStreakThreshold int
	RecentWindow         int
	InactivityDays       float64

	// Adaptation chain
	BreakScore     float64
	SimplifyScore  float64
	ChallengeScore float64
	LevelStep      float64

	// Difficulty calibration
	HighRiskScore      float64
	RaiseAccuracy      float64
	LowerAccuracy      float64
	RaiseMaxHelpCount  int
	RaiseMaxResponseMs float64

	// Session lifecycle
	HighErrorRate      float64
	MinutesPerActivity float64
}

// DefaultThresholds returns the production tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowMultiplier:       2.0,
		FastMultiplier:       0.5,
		WrongStreakThreshold: 3,
		RecentWindow:         10,
		InactivityDays:       3,
		BreakScore:           0.8,
		SimplifyScore:        0.5,
		ChallengeScore:       0.3,
		LevelStep:            0.5,
		HighRiskScore:        0.6,
		RaiseAccuracy:        0.85,
		LowerAccuracy:        0.5,
		RaiseMaxHelpCount:    1,
		RaiseMaxResponseMs:   10000,
		HighErrorRate:        0.5,
		MinutesPerActivity:   1.5,
	}
}

// ThresholdOverrides is a partial override applied on top of a base value.
// Nil fields keep the base setting.
type ThresholdOverrides struct {
	SlowMultiplier       *float64
	FastMultiplier       *float64
	WrongStreakThreshold *int
	RecentWindow         *int
	InactivityDays       *float64
	BreakScore           *float64
	SimplifyScore        *float64
	ChallengeScore       *float64
	LevelStep            *float64
	HighRiskScore        *float64
	RaiseAccuracy        *float64
	LowerAccuracy        *float64
	RaiseMaxHelpCount    *int
	RaiseMaxResponseMs   *float64
	HighErrorRate        *float64
	MinutesPerActivity   *float64
}

// Apply merges the overrides into a copy of th and returns it.
func (th Thresholds) Apply(o ThresholdOverrides) Thresholds {
	if o.SlowMultiplier != nil {
		th.SlowMultiplier = *o.SlowMultiplier
	}
	if o.FastMultiplier != nil {
		th.FastMultiplier = *o.FastMultiplier
	}
	if o.WrongStreakThreshold != nil {
		th.WrongStreakThreshold = *o.WrongStreakThreshold
	}
	if o.RecentWindow != nil {
		th.RecentWindow = *o.RecentWindow
	}
	if o.InactivityDays != nil {
		th.InactivityDays = *o.InactivityDays
	}
	if o.BreakScore != nil {
		th.BreakScore = *o.BreakScore
	}
	if o.SimplifyScore != nil {
		th.SimplifyScore = *o.SimplifyScore
	}
	if o.ChallengeScore != nil {
		th.ChallengeScore = *o.ChallengeScore
	}
	if o.LevelStep != nil {
		th.LevelStep = *o.LevelStep
	}
	if o.HighRiskScore != nil {
		th.HighRiskScore = *o.HighRiskScore
	}
	if o.RaiseAccuracy != nil {
		th.RaiseAccuracy = *o.RaiseAccuracy
	}
	if o.LowerAccuracy != nil {
		th.LowerAccuracy = *o.LowerAccuracy
	}
	if o.RaiseMaxHelpCount != nil {
		th.RaiseMaxHelpCount = *o.RaiseMaxHelpCount
	}
	if o.RaiseMaxResponseMs != nil {
		th.RaiseMaxResponseMs = *o.RaiseMaxResponseMs
	}
	if o.HighErrorRate != nil {
		th.HighErrorRate = *o.HighErrorRate
	}
	if o.MinutesPerActivity != nil {
		th.MinutesPerActivity = *o.MinutesPerActivity
	}
	return th
}
