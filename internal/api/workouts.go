package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Workout timestamps

	"lorefit/internal/config"     // Point economy tunables
	"lorefit/internal/domain"     // Importing domain models
	"lorefit/internal/middleware" // Authenticated user ID
	"lorefit/internal/points"     // Point economy engine
	"lorefit/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Ledger entry references
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Request struct for logging a manual workout
type CreateWorkoutRequest struct {
	ActivityType string  `json:"activity_type" binding:"required"`    // Activity type must be provided
	DurationMin  int     `json:"duration_min" binding:"required"`     // Duration must be provided
	Distance     float64 `json:"distance_km"`                         // Distance in kilometers, optional
	StartedAt    *string `json:"started_at"`                          // RFC3339 start time, defaults to now
}

// workoutsPrefix builds the cache key prefix for a user's workout list
func workoutsPrefix(userID uint) string {
	return "workouts:user:" + strconv.Itoa(int(userID))
}

// acceptWorkoutTx runs the full workout acceptance pipeline in one
// transaction: insert the workout, award capped points scaled by the
// pre-existing baseline, recompute the baseline, and apply the minutes to
// joined challenges. Returns the points awarded and completed challenge IDs.
func acceptWorkoutTx(tx *gorm.DB, cfg *config.Config, userID uint, w *domain.Workout) (int64, []uint, error) {
	// Look up the baseline before this workout is inserted
	var baseline domain.Baseline
	avgDur, samples := 0.0, 0
	if err := tx.Where("user_id = ? AND activity_type = ?", userID, w.ActivityType).
		First(&baseline).Error; err == nil {
		avgDur, samples = baseline.AvgDurationMin, baseline.SampleCount
	}
	// Scale the base award by personal effort
	multiplier := points.EffortMultiplier(w.DurationMin, avgDur, samples)
	amount := points.WorkoutAward(cfg.BasePointsPerWorkout, multiplier)

	// Insert the workout row
	if err := tx.Create(w).Error; err != nil {
		return 0, nil, err
	}
	// Award under the daily cap
	awarded, err := points.AwardWorkoutTx(tx, userID, amount, cfg.DailyEarnCap, time.Now(), uuid.NewString())
	if err != nil {
		return 0, nil, err
	}
	// Record what was actually awarded on the workout
	if err := tx.Model(w).Update("points_awarded", awarded).Error; err != nil {
		return 0, nil, err
	}
	w.PointsAwarded = awarded
	// Recompute the rolling baseline including this workout
	if err := points.RecomputeBaselineTx(tx, userID, w.ActivityType); err != nil {
		return 0, nil, err
	}
	// Apply the minutes to joined challenges
	completed, err := points.ApplyWorkoutToChallengesTx(tx, userID, w)
	if err != nil {
		return 0, nil, err
	}
	return awarded, completed, nil
}

// invalidateWorkoutCaches drops every cache a new workout can change
func invalidateWorkoutCaches(ctx context.Context, rdb *redis.Client, userID uint) {
	utils.InvalidatePages(ctx, rdb, workoutsPrefix(userID)) // Workout list pages
	invalidatePointsCache(ctx, rdb, userID)                 // Balance and history
}

// CreateWorkoutHandler logs a manual workout and awards points
func CreateWorkoutHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateWorkoutRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate duration bounds
		if req.DurationMin < 1 || req.DurationMin > 600 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be 1-600 minutes"})
			return
		}
		// Validate distance
		if req.Distance < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Distance cannot be negative"})
			return
		}
		startedAt := time.Now() // Default start time
		if req.StartedAt != nil {
			t, err := time.Parse(time.RFC3339, *req.StartedAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "started_at must be RFC3339"})
				return
			}
			startedAt = t
		}
		// Future workouts are rejected
		if startedAt.After(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Workout cannot start in the future"})
			return
		}
		workout := domain.Workout{
			UserID:       userID,              // Owner
			Source:       domain.SourceManual, // Manual entry
			ActivityType: req.ActivityType,    // Activity type
			DurationMin:  req.DurationMin,     // Duration
			Distance:     req.Distance,        // Distance in kilometers
			StartedAt:    startedAt,           // Start time
		}
		var awarded int64  // Points actually awarded
		var completed []uint // Challenges completed by this workout
		// Run the acceptance pipeline atomically
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			awarded, completed, err = acceptWorkoutTx(tx, cfg, userID, &workout)
			return err
		})
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":       userID,           // User ID
				"activity_type": req.ActivityType, // Activity type
				"error":         err.Error(),      // Error message
			}).Error("Workout rejected")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log workout"})
			return
		}
		// Log the accepted workout
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,               // User ID
			"workout_id":     workout.ID,           // Workout ID
			"activity_type":  workout.ActivityType, // Activity type
			"points_awarded": awarded,              // Points awarded after cap
		}).Info("Workout logged")
		// Invalidate workout and points caches
		invalidateWorkoutCaches(context.Background(), rdb, userID)
		// Return success response
		c.JSON(http.StatusCreated, gin.H{
			"workout":              workout,   // Stored workout
			"points_awarded":       awarded,   // Points awarded after cap
			"challenges_completed": completed, // Challenges completed by this workout
		})
	}
}

// ListWorkoutsHandler returns the user's workouts, newest first
func ListWorkoutsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pageParams(c) // Pagination params
		offset := (page - 1) * pageSize // Calculate offset
		// Redis cache key
		cacheKey := workoutsPrefix(userID) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Workouts   []domain.Workout `json:"workouts"`    // List of workouts
			Page       int              `json:"page"`        // Current page
			PageSize   int              `json:"page_size"`   // Page size
			Total      int64            `json:"total"`       // Total workouts
			TotalPages int              `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"workouts":    cached.Workouts,   // Cached workouts
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total workouts
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,
			})
			return
		}
		var total int64 // Total count of workouts
		if err := db.Model(&domain.Workout{}).
			Where("user_id = ?", userID).
			Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count workouts"})
			return
		}
		var workouts []domain.Workout // Slice to hold workouts
		// Fetch paginated workouts
		if err := db.Where("user_id = ?", userID).
			Order("started_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&workouts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch workouts"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"workouts":    workouts,   // List of workouts
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total workouts
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL)
		c.JSON(http.StatusOK, resp) // Return workout list
	}
}

// ListBaselinesHandler returns the user's per-activity baselines
func ListBaselinesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var baselines []domain.Baseline // Slice to hold baselines
		if err := db.Where("user_id = ?", userID).
			Order("activity_type asc").
			Find(&baselines).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch baselines"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"baselines": baselines}) // Return baselines
	}
}
