package domain

import "time"

// Workout sources
const (
	SourceManual = "manual" // Logged by the user through the API
	SourceStrava = "strava" // Imported from Strava
	SourceFitbit = "fitbit" // Imported from Fitbit
)

// Workout Model
type Workout struct {
	ID            uint      `gorm:"primaryKey"`                            // Primary key
	UserID        uint      `gorm:"index;not null"`                        // Foreign key to User
	Source        string    `gorm:"not null;default:manual;uniqueIndex:idx_workout_source_ext"` // Source: manual, strava, fitbit
	ExternalID    *string   `gorm:"uniqueIndex:idx_workout_source_ext"`    // Provider activity ID, nil for manual workouts
	ActivityType  string    `gorm:"not null;index"`                        // Activity type: run, ride, swim, ...
	DurationMin   int       `gorm:"not null"`                         // Duration in minutes
	Distance      float64   // Distance in kilometers, zero when not applicable
	StartedAt     time.Time `gorm:"index"`                // When the activity started
	PointsAwarded int64     // Points awarded for this workout after baseline scaling and daily cap
	CreatedAt     int64     `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
