package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"lorefit/internal/domain"     // Importing domain models
	"lorefit/internal/middleware" // Authenticated user ID
	"lorefit/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Request struct for profile updates
type UpdateProfileRequest struct {
	Bio       *string `json:"bio"`        // New bio, nil leaves it unchanged
	AvatarURL *string `json:"avatar_url"` // New avatar URL, nil leaves it unchanged
	Timezone  *string `json:"timezone"`   // New timezone, nil leaves it unchanged
}

// profileCacheKey builds the cache key for a user's profile
func profileCacheKey(userID uint) string {
	return "profile:user:" + strconv.Itoa(int(userID))
}

// GetProfileHandler returns the authenticated user's profile
func GetProfileHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()       // Context for Redis operations
		cacheKey := profileCacheKey(userID)
		var profile domain.Profile // Profile struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &profile)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"profile": profile, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, profile, utils.CacheTTL)       // Cache the profile
		c.JSON(http.StatusOK, gin.H{"profile": profile, "cached": false}) // Return profile info
	}
}

// UpdateProfileHandler applies partial updates to the profile
func UpdateProfileHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var profile domain.Profile // Fetch profile from database
		if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		// Build the partial update set
		updates := map[string]any{}
		if req.Bio != nil {
			if len(*req.Bio) > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Bio must be at most 500 characters"})
				return
			}
			updates["bio"] = *req.Bio
		}
		if req.AvatarURL != nil {
			updates["avatar_url"] = *req.AvatarURL
		}
		if req.Timezone != nil {
			updates["timezone"] = *req.Timezone
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}
		// Apply the updates
		if err := db.Model(&profile).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		// Invalidate the profile cache
		_ = utils.DeleteCache(context.Background(), rdb, profileCacheKey(userID))
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
	}
}
