package engine

import "math"

// Proficiency levels run 1 (first words) through 5 (confident speaker).
// Targets may sit between whole levels; content selection rounds as needed.

// chunkLevelAnchors pins acquired-chunk counts to proficiency levels. The
// mapping is piecewise-linear between anchors and flat beyond the last one.
var chunkLevelAnchors = []struct {
	chunks int
	level  float64
}{
	{0, 1},
	{100, 2},
	{500, 3},
	{2200, 4.5},
	{2300, 5},
}

// MapChunksToLevel converts an acquired-chunk count to a proficiency level
// in [1,5]. Monotone in the count.
func MapChunksToLevel(acquired int) float64 {
	if acquired <= 0 {
		return 1
	}
	last := chunkLevelAnchors[len(chunkLevelAnchors)-1]
	if acquired >= last.chunks {
		return last.level
	}
	for i := 1; i < len(chunkLevelAnchors); i++ {
		hi := chunkLevelAnchors[i]
		if acquired > hi.chunks {
			continue
		}
		lo := chunkLevelAnchors[i-1]
		frac := float64(acquired-lo.chunks) / float64(hi.chunks-lo.chunks)
		return lo.level + frac*(hi.level-lo.level)
	}
	return last.level
}

// CalculateCurrentLevel estimates the learner's present proficiency: the
// chunk-derived base, nudged by confidence around the neutral 0.5, and
// pulled down when the long-run filter risk is high.
func CalculateCurrentLevel(profile LearnerProfile, th Thresholds) float64 {
	level := MapChunksToLevel(profile.ChunksAcquired)
	level += (profile.AvgConfidence - 0.5) * 0.5
	if profile.FilterRiskScore > th.HighRiskScore {
		level -= th.LevelStep
	}
	return clampLevel(level)
}

// CalculateIPlusOne returns the stretch target one level above current.
// Under high filter risk the stretch is dropped and the current level is
// returned unchanged.
func CalculateIPlusOne(profile LearnerProfile, currentLevel float64, th Thresholds) float64 {
	if profile.FilterRiskScore > th.HighRiskScore {
		return clampLevel(currentLevel)
	}
	return math.Min(5, currentLevel+1)
}

// Performance summarizes one session's in-flight results for live target
// adjustment.
type Performance struct {
	Correct           int
	Total             int
	AvgResponseTimeMs float64
	HelpUsedCount     int
}

// AdaptDifficulty moves the live target level by one step when the session
// performance clearly calls for it: raise on high accuracy with little help
// and quick answers, lower on low accuracy or heavy help usage, otherwise
// hold. The boundary constants are tuning surface, not contract.
func AdaptDifficulty(currentTarget float64, perf Performance, th Thresholds) float64 {
	if perf.Total == 0 {
		return clampLevel(currentTarget)
	}
	accuracy := float64(perf.Correct) / float64(perf.Total)

	if accuracy >= th.RaiseAccuracy &&
		perf.HelpUsedCount <= th.RaiseMaxHelpCount &&
		perf.AvgResponseTimeMs <= th.RaiseMaxResponseMs {
		return clampLevel(currentTarget + th.LevelStep)
	}

	if accuracy <= th.LowerAccuracy || perf.HelpUsedCount*2 >= perf.Total {
		return clampLevel(currentTarget - th.LevelStep)
	}

	return clampLevel(currentTarget)
}
