package domain

import "time"

// Challenge Model: a time-boxed activity goal with a point reward.
type Challenge struct {
	ID            uint      `gorm:"primaryKey"` // Primary key
	Title         string    `gorm:"not null"`   // Challenge title
	Description   string    `gorm:"size:1000"`  // Free-text description
	ActivityType  string    // Restrict progress to this activity type, empty means any
	TargetMinutes int       `gorm:"not null"` // Minutes of activity required to complete
	RewardPoints  int64     `gorm:"not null"` // Points awarded on completion
	StartsAt      time.Time `gorm:"index"`    // Window start
	EndsAt        time.Time `gorm:"index"`    // Window end
}

// ChallengeProgress Model: a user's accumulated progress in one challenge.
type ChallengeProgress struct {
	ID          uint   `gorm:"primaryKey"`                       // Primary key
	ChallengeID uint   `gorm:"uniqueIndex:idx_progress_ch_user"` // Foreign key to Challenge
	UserID      uint   `gorm:"uniqueIndex:idx_progress_ch_user"` // Foreign key to User
	Minutes     int    `gorm:"not null;default:0"`               // Minutes accumulated inside the window
	CompletedAt *int64 // Unix milliseconds of completion, nil while incomplete
}
