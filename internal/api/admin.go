package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Challenge windows

	"lorefit/internal/domain" // Importing domain models
	"lorefit/internal/points" // Point economy engine
	"lorefit/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint                `json:"id"`       // User ID
	Username string              `json:"username"` // Username
	Email    string              `json:"email"`    // Email
	Role     string              `json:"role"`     // User role
	Ledger   domain.PointsLedger `json:"ledger"`   // Associated points ledger
}

// ListUsersHandler returns all users with their ledger summaries
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of users
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of users
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c) // Pagination params
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total user count
		// Fetch total user count
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"}) // Return on error
			return
		}
		var users []domain.User // Slice to hold users
		// Preload Ledger relation, apply offset and limit for pagination
		if err := db.Preload("Ledger").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		// Prepare response data
		resp := make([]UserAdminResponse, len(users))
		// Map users to response format
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:       u.ID,       // User ID
				Username: u.Username, // Username
				Email:    u.Email,    // Email
				Role:     u.Role,     // User role
				Ledger:   u.Ledger,   // Associated ledger
			}
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,       // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, utils.CacheTTL)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListLedgerHandler returns ledger entries, with optional filtering by user, reason, or date
func ListLedgerHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"user_id", "reason", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:ledger:" + strings.Join(keyParts, ":")
		var cached struct {
			Entries    []domain.LedgerEntry `json:"entries"`     // List of entries
			Page       int                  `json:"page"`        // Current page
			PageSize   int                  `json:"page_size"`   // Page size
			Total      int64                `json:"total"`       // Total number of entries
			TotalPages int                  `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"entries":     cached.Entries,    // List of entries
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of entries
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize := pageParams(c)           // Pagination params
		offset := (page - 1) * pageSize           // Calculate offset for pagination
		query := db.Model(&domain.LedgerEntry{})  // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			// Resolve the user's ledger for the filter
			query = query.Where("ledger_id IN (?)",
				db.Model(&domain.PointsLedger{}).Select("id").Where("user_id = ?", userID))
		}
		if reason := c.Query("reason"); reason != "" {
			query = query.Where("reason = ?", reason) // Filter by reason
		}
		if from := c.Query("from"); from != "" {
			ts, err := time.Parse(time.RFC3339, from) // Parse start of the range
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
				return
			}
			query = query.Where("created_at >= ?", ts.UnixMilli()) // Filter by start date
		}
		if to := c.Query("to"); to != "" {
			ts, err := time.Parse(time.RFC3339, to) // Parse end of the range
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
				return
			}
			query = query.Where("created_at <= ?", ts.UnixMilli()) // Filter by end date
		}
		var total int64 // Total entry count
		// Get total count of entries matching the filters
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count entries"})
			return
		}
		var entries []domain.LedgerEntry // Slice to hold entries
		// Fetch paginated entries with filters applied
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&entries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch entries"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"entries":     entries,    // List of entries
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of entries
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, utils.CacheTTL)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// Request struct for manual point grants
type GrantPointsRequest struct {
	UserID uint  `json:"user_id" binding:"required"` // Target user
	Amount int64 `json:"amount" binding:"required"`  // Positive awards, negative revokes
}

// GrantPointsHandler lets an admin award or revoke points manually
func GrantPointsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GrantPointsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var ref string
		var err error
		if req.Amount > 0 {
			ref, err = points.Award(db, req.UserID, req.Amount, points.ReasonAdminGrant) // Manual award
		} else {
			ref, err = points.Spend(db, req.UserID, -req.Amount, points.ReasonAdminRevoke) // Manual revoke
		}
		if err == points.ErrInsufficientBalance {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Revoke exceeds the user's balance"})
			return
		}
		if err == points.ErrNoLedger {
			c.JSON(http.StatusNotFound, gin.H{"error": "User ledger not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Grant failed"})
			return
		}
		// Log the manual adjustment
		logrus.WithFields(logrus.Fields{
			"target_user_id": req.UserID, // Target user
			"amount":         req.Amount, // Signed amount
			"ref":            ref,        // Ledger entry reference
		}).Info("Admin point adjustment")
		// Invalidate the target user's points caches
		invalidatePointsCache(context.Background(), rdb, req.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "Points adjusted", "ref": ref})
	}
}

// Request struct for creating a challenge
type CreateChallengeRequest struct {
	Title         string `json:"title" binding:"required"`          // Title must be provided
	Description   string `json:"description"`                       // Free-text description
	ActivityType  string `json:"activity_type"`                     // Restrict to this activity type, empty means any
	TargetMinutes int    `json:"target_minutes" binding:"required"` // Minutes required to complete
	RewardPoints  int64  `json:"reward_points" binding:"required"`  // Points awarded on completion
	StartsAt      string `json:"starts_at" binding:"required"`      // RFC3339 window start
	EndsAt        string `json:"ends_at" binding:"required"`        // RFC3339 window end
}

// CreateChallengeHandler lets an admin create a time-boxed challenge
func CreateChallengeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateChallengeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate goal and reward
		if req.TargetMinutes < 1 || req.RewardPoints < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Target minutes and reward must be positive"})
			return
		}
		startsAt, err := time.Parse(time.RFC3339, req.StartsAt) // Parse window start
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "starts_at must be RFC3339"})
			return
		}
		endsAt, err := time.Parse(time.RFC3339, req.EndsAt) // Parse window end
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ends_at must be RFC3339"})
			return
		}
		// Validate the window
		if !endsAt.After(startsAt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ends_at must be after starts_at"})
			return
		}
		challenge := domain.Challenge{
			Title:         req.Title,                        // Challenge title
			Description:   req.Description,                  // Description
			ActivityType:  strings.ToLower(req.ActivityType), // Normalized activity type
			TargetMinutes: req.TargetMinutes,                // Goal minutes
			RewardPoints:  req.RewardPoints,                 // Completion reward
			StartsAt:      startsAt,                         // Window start
			EndsAt:        endsAt,                           // Window end
		}
		// Create the challenge
		if err := db.Create(&challenge).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
			return
		}
		// Log the creation
		logrus.WithFields(logrus.Fields{
			"challenge_id": challenge.ID,    // Challenge ID
			"title":        challenge.Title, // Title
		}).Info("Challenge created")
		// Invalidate the active challenge cache
		_ = utils.DeleteCache(context.Background(), rdb, activeChallengesKey)
		c.JSON(http.StatusCreated, gin.H{"challenge": challenge}) // Return the new challenge
	}
}
