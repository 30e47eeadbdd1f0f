package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Challenge windows

	"lorefit/internal/domain"     // Importing domain models
	"lorefit/internal/middleware" // Authenticated user ID
	"lorefit/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Cache key for the active challenge list
const activeChallengesKey = "challenges:active"

// ListChallengesHandler returns challenges whose window contains now
func ListChallengesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		var cached []domain.Challenge
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, activeChallengesKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"challenges": cached, "cached": true})
			return
		}
		now := time.Now() // Window check
		var challenges []domain.Challenge
		// Fetch active challenges
		if err := db.Where("starts_at <= ? AND ends_at > ?", now, now).
			Order("ends_at asc").
			Find(&challenges).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch challenges"})
			return
		}
		_ = utils.SetCache(ctx, rdb, activeChallengesKey, challenges, utils.CacheTTL) // Cache the list
		c.JSON(http.StatusOK, gin.H{"challenges": challenges, "cached": false})
	}
}

// JoinChallengeHandler enrolls the user in an active challenge once
func JoinChallengeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var challenge domain.Challenge // Fetch the challenge
		if err := db.First(&challenge, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Challenge not found"})
			return
		}
		now := time.Now() // Window check
		if now.Before(challenge.StartsAt) || !now.Before(challenge.EndsAt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Challenge is not active"})
			return
		}
		// One progress row per (challenge, user)
		progress := domain.ChallengeProgress{ChallengeID: challenge.ID, UserID: userID}
		if err := db.Create(&progress).Error; err != nil {
			// Unique index rejects a second join
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already joined"})
			return
		}
		// Log the join
		logrus.WithFields(logrus.Fields{
			"user_id":      userID,       // User ID
			"challenge_id": challenge.ID, // Challenge ID
		}).Info("Challenge joined")
		c.JSON(http.StatusCreated, gin.H{"message": "Challenge joined"})
	}
}

// GetChallengeProgressHandler returns the user's progress in one challenge
func GetChallengeProgressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var challenge domain.Challenge // Fetch the challenge
		if err := db.First(&challenge, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Challenge not found"})
			return
		}
		var progress domain.ChallengeProgress // Fetch the progress row
		if err := db.Where("challenge_id = ? AND user_id = ?", challenge.ID, userID).
			First(&progress).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not joined"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"challenge":      challenge,              // Challenge definition
			"minutes":        progress.Minutes,       // Accumulated minutes
			"target_minutes": challenge.TargetMinutes, // Minutes required
			"completed_at":   progress.CompletedAt,   // Completion time, nil while incomplete
		})
	}
}
