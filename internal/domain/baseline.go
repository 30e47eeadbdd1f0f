package domain

// Baseline Model: rolling average of a user's recent workouts per activity
// type, used to scale point awards to personal effort.
type Baseline struct {
	ID             uint    `gorm:"primaryKey"`                       // Primary key
	UserID         uint    `gorm:"uniqueIndex:idx_baseline_user_at"` // Foreign key to User
	ActivityType   string  `gorm:"uniqueIndex:idx_baseline_user_at"` // Activity type this baseline covers
	AvgDurationMin float64 // Average duration over the window, in minutes
	AvgDistance    float64 // Average distance over the window, in kilometers
	SampleCount    int     // Number of workouts in the window
	UpdatedAt      int64   `gorm:"autoUpdateTime:milli"` // Timestamp of last recompute in milliseconds
}
