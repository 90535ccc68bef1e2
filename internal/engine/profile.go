package engine

import "time"

// LearnerProfile is the read model the engine consumes. It is a snapshot of
// the learner's longitudinal stats; the profile service owns the stored row
// and is the only writer.
type LearnerProfile struct {
	AvgConfidence   float64
	WrongAnswerRate float64
	HelpRequestRate float64
	FilterRiskScore float64

	// LastActivityAt is nil when the learner has never completed an
	// activity; the filter treats that as indefinitely inactive.
	LastActivityAt *time.Time

	ChunksAcquired int
	ChunksLearning int
	ChunksFragile  int
}
