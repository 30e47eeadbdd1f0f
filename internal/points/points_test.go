package points

import (
	"path/filepath"
	"testing"
	"time"

	"lorefit/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a throwaway sqlite database with the ledger and
// challenge tables migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "points.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.PointsLedger{},
		&domain.LedgerEntry{},
		&domain.Challenge{},
		&domain.ChallengeProgress{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedLedger(t *testing.T, db *gorm.DB, userID uint) {
	t.Helper()
	if err := db.Create(&domain.PointsLedger{UserID: userID}).Error; err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
}

func ledgerFor(t *testing.T, db *gorm.DB, userID uint) domain.PointsLedger {
	t.Helper()
	var ledger domain.PointsLedger
	if err := db.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
		t.Fatalf("fetch ledger: %v", err)
	}
	return ledger
}

func entryCount(t *testing.T, db *gorm.DB, reason string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.LedgerEntry{}).Where("reason = ?", reason).Count(&n).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	return n
}

func TestAwardAndSpend(t *testing.T) {
	db := newTestDB(t)
	seedLedger(t, db, 1)

	if _, err := Award(db, 1, 100, ReasonAdminGrant); err != nil {
		t.Fatalf("Award: %v", err)
	}
	if _, err := Spend(db, 1, 30, ReasonChapter); err != nil {
		t.Fatalf("Spend: %v", err)
	}
	ledger := ledgerFor(t, db, 1)
	if ledger.Balance != 70 {
		t.Errorf("Balance = %d, want 70", ledger.Balance)
	}
	// Spends never touch lifetime earned
	if ledger.LifetimeEarned != 100 {
		t.Errorf("LifetimeEarned = %d, want 100", ledger.LifetimeEarned)
	}
	var entries int64
	db.Model(&domain.LedgerEntry{}).Count(&entries)
	if entries != 2 {
		t.Errorf("entry count = %d, want 2", entries)
	}
}

func TestSpendInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	seedLedger(t, db, 1)

	if _, err := Spend(db, 1, 50, ReasonChapter); err != ErrInsufficientBalance {
		t.Fatalf("Spend on empty ledger err = %v, want ErrInsufficientBalance", err)
	}
	// A failed spend leaves no trace
	if ledger := ledgerFor(t, db, 1); ledger.Balance != 0 {
		t.Errorf("Balance = %d, want 0", ledger.Balance)
	}
	var entries int64
	db.Model(&domain.LedgerEntry{}).Count(&entries)
	if entries != 0 {
		t.Errorf("entry count = %d, want 0", entries)
	}
}

func TestAwardWorkoutDailyCap(t *testing.T) {
	db := newTestDB(t)
	seedLedger(t, db, 1)
	now := time.Now()

	award := func(amount int64) int64 {
		t.Helper()
		var got int64
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			got, err = AwardWorkoutTx(tx, 1, amount, 500, now, "")
			return err
		})
		if err != nil {
			t.Fatalf("AwardWorkoutTx: %v", err)
		}
		return got
	}

	if got := award(400); got != 400 {
		t.Errorf("first award = %d, want 400", got)
	}
	// Only 100 of headroom left, the award is partial
	if got := award(400); got != 100 {
		t.Errorf("second award = %d, want 100", got)
	}
	// At the cap the award is fully clamped and writes no entry
	if got := award(400); got != 0 {
		t.Errorf("third award = %d, want 0", got)
	}
	if n := entryCount(t, db, ReasonWorkout); n != 2 {
		t.Errorf("workout entry count = %d, want 2", n)
	}
	if ledger := ledgerFor(t, db, 1); ledger.Balance != 500 {
		t.Errorf("Balance = %d, want 500", ledger.Balance)
	}
}

// seedChallenge creates an active any-activity challenge with a joined
// progress row already at the given minutes.
func seedChallenge(t *testing.T, db *gorm.DB, userID uint, target, minutes int, reward int64) (domain.Challenge, domain.ChallengeProgress) {
	t.Helper()
	now := time.Now()
	challenge := domain.Challenge{
		Title:         "weekly minutes",
		TargetMinutes: target,
		RewardPoints:  reward,
		StartsAt:      now.Add(-24 * time.Hour),
		EndsAt:        now.Add(24 * time.Hour),
	}
	if err := db.Create(&challenge).Error; err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
	progress := domain.ChallengeProgress{ChallengeID: challenge.ID, UserID: userID, Minutes: minutes}
	if err := db.Create(&progress).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}
	return challenge, progress
}

func TestChallengeRewardExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	seedLedger(t, db, 1)
	challenge, progress := seedChallenge(t, db, 1, 60, 50, 200)

	workout := &domain.Workout{UserID: 1, ActivityType: "run", DurationMin: 15, StartedAt: time.Now()}
	completed, err := ApplyWorkoutToChallengesTx(db, 1, workout)
	if err != nil {
		t.Fatalf("ApplyWorkoutToChallengesTx: %v", err)
	}
	if len(completed) != 1 || completed[0] != challenge.ID {
		t.Fatalf("completed = %v, want [%d]", completed, challenge.ID)
	}
	if ledger := ledgerFor(t, db, 1); ledger.Balance != 200 {
		t.Errorf("Balance = %d, want 200", ledger.Balance)
	}
	var fresh domain.ChallengeProgress
	db.First(&fresh, progress.ID)
	if fresh.Minutes != 65 {
		t.Errorf("Minutes = %d, want 65", fresh.Minutes)
	}
	if fresh.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}

	// A later workout on the completed challenge awards nothing more
	completed, err = ApplyWorkoutToChallengesTx(db, 1, workout)
	if err != nil {
		t.Fatalf("second ApplyWorkoutToChallengesTx: %v", err)
	}
	if len(completed) != 0 {
		t.Errorf("second completed = %v, want none", completed)
	}
	if n := entryCount(t, db, ReasonChallenge); n != 1 {
		t.Errorf("challenge entry count = %d, want 1", n)
	}
}

func TestChallengeStaleScanDoesNotDoubleAward(t *testing.T) {
	db := newTestDB(t)
	seedLedger(t, db, 1)
	_, progress := seedChallenge(t, db, 1, 60, 50, 200)

	// Complete the challenge through the normal path
	workout := &domain.Workout{UserID: 1, ActivityType: "run", DurationMin: 15, StartedAt: time.Now()}
	if _, err := ApplyWorkoutToChallengesTx(db, 1, workout); err != nil {
		t.Fatalf("ApplyWorkoutToChallengesTx: %v", err)
	}

	// A concurrent writer scans the row before the completion commits and
	// still believes it is incomplete; its guarded updates must match
	// nothing and pay nothing.
	stale := challengeProgressRow{
		ChallengeProgress: domain.ChallengeProgress{ID: progress.ID, ChallengeID: progress.ChallengeID, UserID: 1, Minutes: 50},
		TargetMinutes:     60,
		RewardPoints:      200,
	}
	done, err := applyProgressRowTx(db, 1, stale, 15)
	if err != nil {
		t.Fatalf("applyProgressRowTx: %v", err)
	}
	if done {
		t.Error("stale row reported a second completion")
	}
	if n := entryCount(t, db, ReasonChallenge); n != 1 {
		t.Errorf("challenge entry count = %d, want 1", n)
	}
	if ledger := ledgerFor(t, db, 1); ledger.Balance != 200 {
		t.Errorf("Balance = %d, want 200", ledger.Balance)
	}
	// The stale writer also must not touch the accumulated minutes
	var fresh domain.ChallengeProgress
	db.First(&fresh, progress.ID)
	if fresh.Minutes != 65 {
		t.Errorf("Minutes = %d, want 65", fresh.Minutes)
	}
}
