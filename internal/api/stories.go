package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion

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

// Request struct for creating a story
type CreateStoryRequest struct {
	Title   string `json:"title" binding:"required"` // Title must be provided
	Premise string `json:"premise"`                  // Opening premise, optional
}

// Request struct for submitting a chapter
type CreateChapterRequest struct {
	Body string `json:"body" binding:"required"` // Chapter text must be provided
}

// Request struct for voting on a chapter
type VoteRequest struct {
	Value int `json:"value" binding:"required"` // +1 or -1
}

// storiesPrefix is the cache key prefix for the story list
const storiesPrefix = "stories"

// storyCacheKey builds the cache key for one story with chapters
func storyCacheKey(storyID uint) string {
	return "story:" + strconv.Itoa(int(storyID))
}

// CreateStoryHandler creates a story, spending the creation cost
func CreateStoryHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateStoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if len(req.Title) > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be at most 200 characters"})
			return
		}
		if len(req.Premise) > 2000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Premise must be at most 2000 characters"})
			return
		}
		story := domain.Story{
			Title:     req.Title,        // Story title
			Premise:   req.Premise,      // Opening premise
			CreatorID: userID,           // Creating user
			Status:    domain.StoryOpen, // Open for chapters
		}
		// Spend and insert happen in one transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := points.SpendTx(tx, userID, cfg.StoryCreateCost, points.ReasonStoryCreate, uuid.NewString()); err != nil {
				return err // Insufficient balance rolls back the creation
			}
			return tx.Create(&story).Error
		})
		if err == points.ErrInsufficientBalance {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Not enough points to create a story"})
			return
		}
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Story creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create story"})
			return
		}
		// Log the creation
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,              // User ID
			"story_id": story.ID,            // Story ID
			"cost":     cfg.StoryCreateCost, // Points spent
		}).Info("Story created")
		// Invalidate the story list and the creator's points caches
		ctx := context.Background()
		utils.InvalidatePages(ctx, rdb, storiesPrefix)
		invalidatePointsCache(ctx, rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"story": story}) // Return the new story
	}
}

// ListStoriesHandler returns stories, newest first
func ListStoriesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c) // Pagination params
		offset := (page - 1) * pageSize // Calculate offset
		// Redis cache key
		cacheKey := storiesPrefix + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Stories    []domain.Story `json:"stories"`     // List of stories
			Page       int            `json:"page"`        // Current page
			PageSize   int            `json:"page_size"`   // Page size
			Total      int64          `json:"total"`       // Total stories
			TotalPages int            `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"stories":     cached.Stories,    // Cached stories
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total stories
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,
			})
			return
		}
		var total int64 // Total count of stories
		if err := db.Model(&domain.Story{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count stories"})
			return
		}
		var stories []domain.Story // Slice to hold stories
		// Fetch paginated stories
		if err := db.Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&stories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"stories":     stories,    // List of stories
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total stories
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL)
		c.JSON(http.StatusOK, resp) // Return story list
	}
}

// GetStoryHandler returns one story with its chapters in order
func GetStoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Story ID from the path
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid story ID"})
			return
		}
		ctx := context.Background()      // Context for Redis operations
		cacheKey := storyCacheKey(uint(id))
		var cached struct {
			Story    domain.Story     `json:"story"`    // Story
			Chapters []domain.Chapter `json:"chapters"` // Chapters in order
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"story": cached.Story, "chapters": cached.Chapters, "cached": true})
			return
		}
		var story domain.Story // Fetch the story
		if err := db.First(&story, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
			return
		}
		var chapters []domain.Chapter // Fetch chapters in sequence order
		if err := db.Where("story_id = ?", story.ID).
			Order("number asc").
			Find(&chapters).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chapters"})
			return
		}
		resp := gin.H{"story": story, "chapters": chapters, "cached": false}
		// Cache story and chapters together
		_ = utils.SetCache(ctx, rdb, cacheKey, gin.H{"story": story, "chapters": chapters}, utils.CacheTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// CreateChapterHandler appends a chapter to an open story, spending the chapter cost
func CreateChapterHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateChapterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate chapter body length
		if len(req.Body) < 1 || len(req.Body) > 10000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Chapter body must be 1-10000 characters"})
			return
		}
		var story domain.Story // Fetch the story
		if err := db.First(&story, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
			return
		}
		// Closed stories reject chapters
		if story.Status != domain.StoryOpen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Story is closed"})
			return
		}
		var chapter domain.Chapter // The new chapter
		// Spend, number assignment and insert happen in one transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := points.SpendTx(tx, userID, cfg.ChapterCost, points.ReasonChapter, uuid.NewString()); err != nil {
				return err // Insufficient balance rolls back everything
			}
			// Next sequence number for this story
			var maxNumber int
			if err := tx.Model(&domain.Chapter{}).
				Where("story_id = ?", story.ID).
				Select("COALESCE(MAX(number), 0)").
				Scan(&maxNumber).Error; err != nil {
				return err
			}
			chapter = domain.Chapter{
				StoryID:  story.ID,      // Parent story
				AuthorID: userID,        // Authoring user
				Number:   maxNumber + 1, // Sequential within the story
				Body:     req.Body,      // Chapter text
			}
			// Unique (story, number) index rejects a concurrent writer
			return tx.Create(&chapter).Error
		})
		if err == points.ErrInsufficientBalance {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Not enough points to submit a chapter"})
			return
		}
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,      // User ID
				"story_id": story.ID,    // Story ID
				"error":    err.Error(), // Error message
			}).Error("Chapter submission failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit chapter"})
			return
		}
		// Log the submission
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,          // User ID
			"story_id":   story.ID,        // Story ID
			"chapter_id": chapter.ID,      // Chapter ID
			"number":     chapter.Number,  // Sequence number
			"cost":       cfg.ChapterCost, // Points spent
		}).Info("Chapter submitted")
		// Invalidate the story detail and the author's points caches
		ctx := context.Background()
		_ = utils.DeleteCache(ctx, rdb, storyCacheKey(story.ID))
		invalidatePointsCache(ctx, rdb, userID)
		c.JSON(http.StatusCreated, gin.H{"chapter": chapter}) // Return the new chapter
	}
}

// VoteChapterHandler records one weighted vote per user per chapter
func VoteChapterHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req VoteRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || (req.Value != 1 && req.Value != -1) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Vote value must be 1 or -1"})
			return
		}
		var chapter domain.Chapter // Fetch the chapter
		if err := db.First(&chapter, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
			return
		}
		// Authors cannot vote on their own chapters
		if chapter.AuthorID == userID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot vote on your own chapter"})
			return
		}
		// One vote per (chapter, voter)
		var existing int64
		if err := db.Model(&domain.ChapterVote{}).
			Where("chapter_id = ? AND voter_id = ?", chapter.ID, userID).
			Count(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already voted"})
			return
		}
		var ledger domain.PointsLedger // Voter weight comes from lifetime earned
		if err := db.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
			return
		}
		weight := float64(req.Value) * points.VoterWeight(ledger.LifetimeEarned) // Signed effective weight
		// Vote row and chapter score update happen in one transaction; the
		// unique (chapter, voter) index backstops a concurrent duplicate
		err := db.Transaction(func(tx *gorm.DB) error {
			vote := domain.ChapterVote{
				ChapterID: chapter.ID, // Target chapter
				VoterID:   userID,     // Voting user
				Weight:    weight,     // Signed effective weight
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			// Maintain the cached score on the chapter
			return tx.Model(&chapter).
				Update("vote_score", gorm.Expr("vote_score + ?", weight)).Error
		})
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,      // Voter
				"chapter_id": chapter.ID,  // Chapter ID
				"error":      err.Error(), // Error message
			}).Error("Vote failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
			return
		}
		// Log the vote
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,     // Voter
			"chapter_id": chapter.ID, // Chapter ID
			"weight":     weight,     // Effective weight
		}).Info("Chapter vote recorded")
		// Invalidate the story detail cache
		_ = utils.DeleteCache(context.Background(), rdb, storyCacheKey(chapter.StoryID))
		c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded", "weight": weight})
	}
}

// CloseStoryHandler lets the creator close a story to further chapters
func CloseStoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var story domain.Story // Fetch the story
		if err := db.First(&story, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
			return
		}
		// Only the creator may close
		if story.CreatorID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can close a story"})
			return
		}
		if story.Status == domain.StoryClosed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Story already closed"})
			return
		}
		// Mark the story closed
		if err := db.Model(&story).Update("status", domain.StoryClosed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close story"})
			return
		}
		// Invalidate list and detail caches
		ctx := context.Background()
		utils.InvalidatePages(ctx, rdb, storiesPrefix)
		_ = utils.DeleteCache(ctx, rdb, storyCacheKey(story.ID))
		c.JSON(http.StatusOK, gin.H{"message": "Story closed"})
	}
}
