package points

import "math"

// Baseline parameters
const (
	BaselineWindow     = 10 // Workouts included in the rolling average
	BaselineMinSamples = 3  // Samples required before the baseline scales awards
)

// Effort multiplier bounds
const (
	MinMultiplier = 0.5 // Floor so short workouts still earn something
	MaxMultiplier = 2.0 // Ceiling so marathon sessions cannot farm points
)

// MaxVoterWeight caps how much lifetime points amplify a vote
const MaxVoterWeight = 3.0

// EffortMultiplier scales a workout's award by how it compares to the
// user's baseline average for that activity type. Without an established
// baseline the multiplier is neutral.
func EffortMultiplier(durationMin int, avgDurationMin float64, sampleCount int) float64 {
	if sampleCount < BaselineMinSamples || avgDurationMin <= 0 {
		return 1.0 // No established baseline yet
	}
	m := float64(durationMin) / avgDurationMin // Effort relative to the personal average
	// Clamp into the allowed band
	if m < MinMultiplier {
		return MinMultiplier
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}

// WorkoutAward converts the base award and effort multiplier into points
func WorkoutAward(basePoints int64, multiplier float64) int64 {
	return int64(math.Round(float64(basePoints) * multiplier))
}

// CapDailyAward clamps a workout award to the headroom left under the
// daily earn cap. A zero result means no ledger entry is written.
func CapDailyAward(amount, earnedToday, dailyCap int64) int64 {
	if amount <= 0 {
		return 0
	}
	remaining := dailyCap - earnedToday // Cap headroom for today
	if remaining <= 0 {
		return 0 // Cap reached, nothing to award
	}
	if amount > remaining {
		return remaining // Partial award up to the headroom
	}
	return amount
}

// VoterWeight derives a vote's amplification from lifetime earned points:
// 1 + lifetime/1000, capped so heavy earners cannot dominate votes.
func VoterWeight(lifetimeEarned int64) float64 {
	w := 1.0 + float64(lifetimeEarned)/1000.0
	if w > MaxVoterWeight {
		return MaxVoterWeight
	}
	return w
}
