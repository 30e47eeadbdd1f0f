package points

import (
	"time" // Completion timestamps

	"lorefit/internal/domain" // Importing domain models

	"github.com/google/uuid" // Award references
	"gorm.io/gorm"           // GORM ORM library
)

// challengeProgressRow couples a progress row with its challenge terms
type challengeProgressRow struct {
	domain.ChallengeProgress
	TargetMinutes int   // Joined challenge target
	RewardPoints  int64 // Joined challenge reward
}

// ApplyWorkoutToChallengesTx adds a workout's minutes to every joined
// challenge whose window contains the workout and whose activity type
// matches (or is unrestricted). Completion awards the challenge reward
// exactly once; challenge rewards bypass the daily workout cap.
// Returns the IDs of challenges completed by this workout.
// Must run inside a transaction.
func ApplyWorkoutToChallengesTx(tx *gorm.DB, userID uint, w *domain.Workout) ([]uint, error) {
	var rows []challengeProgressRow
	// Progress rows for challenges this workout counts toward
	err := tx.Model(&domain.ChallengeProgress{}).
		Select("challenge_progresses.*, challenges.target_minutes, challenges.reward_points").
		Joins("JOIN challenges ON challenges.id = challenge_progresses.challenge_id").
		Where("challenge_progresses.user_id = ?", userID).
		Where("challenge_progresses.completed_at IS NULL").
		Where("challenges.starts_at <= ? AND challenges.ends_at > ?", w.StartedAt, w.StartedAt).
		Where("challenges.activity_type = '' OR challenges.activity_type = ?", w.ActivityType).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	var completed []uint // Challenges completed by this workout
	for _, row := range rows {
		done, err := applyProgressRowTx(tx, userID, row, w.DurationMin)
		if err != nil {
			return nil, err
		}
		if done {
			completed = append(completed, row.ChallengeID)
		}
	}
	return completed, nil
}

// applyProgressRowTx accumulates the workout minutes and flips completion
// with guarded updates. The scan that produced row may be stale under a
// concurrent writer, so every write re-checks completed_at against the
// current row and the reward is only paid by the transaction whose update
// performed the incomplete-to-complete transition.
func applyProgressRowTx(tx *gorm.DB, userID uint, row challengeProgressRow, durationMin int) (bool, error) {
	// Accumulate minutes only while the challenge is incomplete
	res := tx.Model(&domain.ChallengeProgress{}).
		Where("id = ? AND completed_at IS NULL", row.ChallengeProgress.ID).
		Update("minutes", gorm.Expr("minutes + ?", durationMin))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil // Completed by a concurrent workout
	}
	// Flip completion once the accumulated minutes reach the target
	res = tx.Model(&domain.ChallengeProgress{}).
		Where("id = ? AND completed_at IS NULL AND minutes >= ?", row.ChallengeProgress.ID, row.TargetMinutes).
		Update("completed_at", time.Now().UnixMilli())
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil // Target not reached yet
	}
	// This transaction performed the completion transition, so it alone
	// pays the reward
	return true, AwardTx(tx, userID, row.RewardPoints, ReasonChallenge, uuid.NewString())
}
