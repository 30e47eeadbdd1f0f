package points

import (
	"errors" // Sentinel errors
	"time"   // UTC day boundaries for the earn cap

	"lorefit/internal/domain" // Importing domain models

	"github.com/google/uuid" // Ledger entry references
	"gorm.io/gorm"           // GORM ORM library
)

// Ledger entry reasons
const (
	ReasonWorkout     = "workout"      // Earned from a workout
	ReasonChallenge   = "challenge"    // Earned from completing a challenge
	ReasonStoryCreate = "story_create" // Spent creating a story
	ReasonChapter     = "chapter"      // Spent submitting a chapter
	ReasonAdminGrant  = "admin_grant"  // Manually granted by an admin
	ReasonAdminRevoke = "admin_revoke" // Manually revoked by an admin
)

// ErrInsufficientBalance is returned when a spend exceeds the balance
var ErrInsufficientBalance = errors.New("insufficient point balance")

// ErrNoLedger is returned when the user has no ledger row
var ErrNoLedger = errors.New("ledger not found")

// AwardTx atomically increments balance and lifetime earned and appends one
// ledger entry. Must run inside a transaction; amount must be positive.
func AwardTx(tx *gorm.DB, userID uint, amount int64, reason, ref string) error {
	var ledger domain.PointsLedger // Fetch the user's ledger row
	if err := tx.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
		return ErrNoLedger // No ledger row for this user
	}
	// Increment balance and lifetime earned together
	if err := tx.Model(&ledger).Updates(map[string]any{
		"balance":         gorm.Expr("balance + ?", amount),
		"lifetime_earned": gorm.Expr("lifetime_earned + ?", amount),
	}).Error; err != nil {
		return err // Return error to rollback
	}
	// Append the ledger entry
	entry := domain.LedgerEntry{
		LedgerID: ledger.ID, // Ledger the entry belongs to
		Delta:    amount,    // Positive delta for awards
		Reason:   reason,    // Machine reason
		Ref:      ref,       // External reference
	}
	return tx.Create(&entry).Error
}

// SpendTx atomically decrements balance and appends one negative ledger
// entry. The decrement is guarded so the balance can never go negative.
// Must run inside a transaction; amount must be positive.
func SpendTx(tx *gorm.DB, userID uint, amount int64, reason, ref string) error {
	var ledger domain.PointsLedger // Fetch the user's ledger row
	if err := tx.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
		return ErrNoLedger // No ledger row for this user
	}
	// Guarded decrement: only applies when the balance covers the amount
	res := tx.Model(&domain.PointsLedger{}).
		Where("id = ? AND balance >= ?", ledger.ID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error // Return error to rollback
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance // Balance did not cover the spend
	}
	// Append the negative ledger entry
	entry := domain.LedgerEntry{
		LedgerID: ledger.ID, // Ledger the entry belongs to
		Delta:    -amount,   // Negative delta for spends
		Reason:   reason,    // Machine reason
		Ref:      ref,       // External reference
	}
	return tx.Create(&entry).Error
}

// Award runs AwardTx in its own transaction and returns the entry reference
func Award(db *gorm.DB, userID uint, amount int64, reason string) (string, error) {
	ref := uuid.NewString() // Reference for the new entry
	err := db.Transaction(func(tx *gorm.DB) error {
		return AwardTx(tx, userID, amount, reason, ref)
	})
	return ref, err
}

// Spend runs SpendTx in its own transaction and returns the entry reference
func Spend(db *gorm.DB, userID uint, amount int64, reason string) (string, error) {
	ref := uuid.NewString() // Reference for the new entry
	err := db.Transaction(func(tx *gorm.DB) error {
		return SpendTx(tx, userID, amount, reason, ref)
	})
	return ref, err
}

// EarnedTodayTx sums workout points earned by the user since the start of
// the current UTC day. Must run inside a transaction or session.
func EarnedTodayTx(tx *gorm.DB, userID uint, now time.Time) (int64, error) {
	var ledger domain.PointsLedger // Fetch the user's ledger row
	if err := tx.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
		return 0, ErrNoLedger
	}
	day := now.UTC().Truncate(24 * time.Hour) // Start of the current UTC day
	var earned int64
	// Sum positive workout deltas since the day started
	err := tx.Model(&domain.LedgerEntry{}).
		Where("ledger_id = ? AND reason = ? AND delta > 0 AND created_at >= ?",
			ledger.ID, ReasonWorkout, day.UnixMilli()).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&earned).Error
	return earned, err
}

// AwardWorkoutTx awards workout points under the daily earn cap. The award
// is clamped to the cap headroom; a fully clamped award writes no entry.
// Returns the amount actually awarded. Must run inside a transaction.
func AwardWorkoutTx(tx *gorm.DB, userID uint, amount, dailyCap int64, now time.Time, ref string) (int64, error) {
	earned, err := EarnedTodayTx(tx, userID, now) // Points already earned today
	if err != nil {
		return 0, err
	}
	amount = CapDailyAward(amount, earned, dailyCap) // Clamp to the cap headroom
	if amount == 0 {
		return 0, nil // Fully clamped, no entry is written
	}
	return amount, AwardTx(tx, userID, amount, ReasonWorkout, ref)
}
