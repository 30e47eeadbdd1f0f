package points

import (
	"lorefit/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// RecomputeBaselineTx recalculates the rolling baseline for one user and
// activity type from the most recent workouts. Must run inside a
// transaction so the triggering workout is visible.
func RecomputeBaselineTx(tx *gorm.DB, userID uint, activityType string) error {
	var workouts []domain.Workout // Most recent workouts of this type
	if err := tx.Where("user_id = ? AND activity_type = ?", userID, activityType).
		Order("started_at desc").
		Limit(BaselineWindow).
		Find(&workouts).Error; err != nil {
		return err
	}
	if len(workouts) == 0 {
		return nil // Nothing to average
	}
	// Average duration and distance over the window
	var sumDur, sumDist float64
	for _, w := range workouts {
		sumDur += float64(w.DurationMin)
		sumDist += w.Distance
	}
	n := float64(len(workouts))

	var baseline domain.Baseline // Upsert the baseline row
	err := tx.Where("user_id = ? AND activity_type = ?", userID, activityType).First(&baseline).Error
	if err == gorm.ErrRecordNotFound {
		baseline = domain.Baseline{UserID: userID, ActivityType: activityType}
	} else if err != nil {
		return err
	}
	baseline.AvgDurationMin = sumDur / n   // New average duration
	baseline.AvgDistance = sumDist / n     // New average distance
	baseline.SampleCount = len(workouts)   // Window size actually used
	return tx.Save(&baseline).Error        // Create or update
}
