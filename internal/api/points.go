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

// pageParams parses page/page_size query params with the shared defaults
func pageParams(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page
	pageSize = 20 // Default page size
	// If page exists in query
	if p := c.Query("page"); p != "" {
		// Convert page to integer
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// If page_size exists in query
	if ps := c.Query("page_size"); ps != "" {
		// Convert page_size to integer
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize
}

// pointsCacheKey builds the cache key for a user's balance
func pointsCacheKey(userID uint) string {
	return "points:user:" + strconv.Itoa(int(userID))
}

// pointsHistoryPrefix builds the cache key prefix for a user's ledger history
func pointsHistoryPrefix(userID uint) string {
	return "pointshistory:user:" + strconv.Itoa(int(userID))
}

// invalidatePointsCache drops the balance and history caches after a mutation
func invalidatePointsCache(ctx context.Context, rdb *redis.Client, userID uint) {
	_ = utils.DeleteCache(ctx, rdb, pointsCacheKey(userID)) // Balance cache
	utils.InvalidatePages(ctx, rdb, pointsHistoryPrefix(userID))
}

// GetPointsHandler returns the authenticated user's balance and lifetime earned
func GetPointsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()       // Context for Redis operations
		cacheKey := pointsCacheKey(userID)
		var ledger domain.PointsLedger // Ledger struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &ledger)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"balance": ledger.Balance, "lifetime_earned": ledger.LifetimeEarned, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, ledger, utils.CacheTTL) // Cache the ledger
		c.JSON(http.StatusOK, gin.H{"balance": ledger.Balance, "lifetime_earned": ledger.LifetimeEarned, "cached": false})
	}
}

// GetPointsHistoryHandler returns the user's ledger entries, newest first
func GetPointsHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var ledger domain.PointsLedger // Get user's ledger
		if err := db.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
			return
		}
		page, pageSize := pageParams(c) // Pagination params
		offset := (page - 1) * pageSize // Calculate offset
		// Redis cache key
		cacheKey := pointsHistoryPrefix(userID) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Entries    []domain.LedgerEntry `json:"entries"`     // List of entries
			Page       int                  `json:"page"`        // Current page
			PageSize   int                  `json:"page_size"`   // Page size
			Total      int64                `json:"total"`       // Total entries
			TotalPages int                  `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"entries":     cached.Entries,    // Cached entries
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total entries
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,
			})
			return
		}
		var total int64 // Total count of entries
		// Count total entries for pagination
		if err := db.Model(&domain.LedgerEntry{}).
			Where("ledger_id = ?", ledger.ID).
			Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count entries"})
			return
		}
		var entries []domain.LedgerEntry // Slice to hold entries
		// Fetch paginated entries
		if err := db.Where("ledger_id = ?", ledger.ID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&entries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch entries"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"entries":     entries,    // List of entries
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total entries
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL)
		c.JSON(http.StatusOK, resp) // Return ledger history
	}
}
