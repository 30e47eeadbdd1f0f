package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Sync windows

	"lorefit/internal/config"     // Point economy tunables
	"lorefit/internal/domain"     // Importing domain models
	"lorefit/internal/fitness"    // Provider clients
	"lorefit/internal/middleware" // Authenticated user ID
	"lorefit/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ProviderFactory resolves a provider name to a client; swapped in tests
type ProviderFactory func(name string) (fitness.Provider, error)

// DefaultProviderFactory builds real provider clients
func DefaultProviderFactory(name string) (fitness.Provider, error) {
	return fitness.New(name, nil)
}

// How far back the first sync of a provider looks
const firstSyncWindow = 30 * 24 * time.Hour

// Request struct for connecting a provider
type ConnectProviderRequest struct {
	AccessToken  string `json:"access_token" binding:"required"` // Access token must be provided
	RefreshToken string `json:"refresh_token"`                   // Refresh token, optional
	ExpiresAt    int64  `json:"expires_at"`                      // Unix seconds, optional
}

// validProviderName rejects anything but the supported providers
func validProviderName(name string) bool {
	return name == fitness.ProviderStrava || name == fitness.ProviderFitbit
}

// ConnectProviderHandler stores encrypted provider tokens for the user
func ConnectProviderHandler(db *gorm.DB, cipher *utils.TokenCipher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if cipher == nil {
			// No encryption key configured, refuse to store tokens
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Fitness sync is not configured"})
			return
		}
		provider := c.Param("provider") // Provider from the path
		if !validProviderName(provider) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider"})
			return
		}
		var req ConnectProviderRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Encrypt both tokens before they touch the database
		encAccess, err := cipher.Encrypt(req.AccessToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store tokens"})
			return
		}
		encRefresh := ""
		if req.RefreshToken != "" {
			if encRefresh, err = cipher.Encrypt(req.RefreshToken); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store tokens"})
				return
			}
		}
		// Replace any previous connection for this provider
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ? AND provider = ?", userID, provider).
				Delete(&domain.FitnessToken{}).Error; err != nil {
				return err
			}
			token := domain.FitnessToken{
				UserID:       userID,        // Owner
				Provider:     provider,      // Provider name
				AccessToken:  encAccess,     // Encrypted access token
				RefreshToken: encRefresh,    // Encrypted refresh token
				ExpiresAt:    req.ExpiresAt, // Expiry as given by the provider
			}
			return tx.Create(&token).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store tokens"})
			return
		}
		// Log without any token material
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,   // User ID
			"provider": provider, // Provider name
		}).Info("Fitness provider connected")
		c.JSON(http.StatusCreated, gin.H{"message": "Provider connected"})
	}
}

// SyncProviderHandler imports new provider activities as workouts
func SyncProviderHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config, cipher *utils.TokenCipher, factory ProviderFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if cipher == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Fitness sync is not configured"})
			return
		}
		providerName := c.Param("provider") // Provider from the path
		if !validProviderName(providerName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider"})
			return
		}
		var token domain.FitnessToken // Stored connection
		if err := db.Where("user_id = ? AND provider = ?", userID, providerName).
			First(&token).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provider not connected"})
			return
		}
		// Decrypt the access token for this request only
		accessToken, err := cipher.Decrypt(token.AccessToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored token unreadable, reconnect the provider"})
			return
		}
		provider, err := factory(providerName) // Build the provider client
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider"})
			return
		}
		// First sync looks back a fixed window, later syncs resume from the last one
		since := time.Now().Add(-firstSyncWindow)
		if token.LastSyncAt > 0 {
			since = time.Unix(token.LastSyncAt, 0)
		}
		activities, err := provider.FetchActivities(c.Request.Context(), accessToken, since)
		if err == fitness.ErrReconnectRequired {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provider rejected the stored token, reconnect required"})
			return
		}
		if err != nil {
			// Log the provider failure
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,       // User ID
				"provider": providerName, // Provider name
				"error":    err.Error(),  // Error message
			}).Error("Provider sync failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Provider request failed"})
			return
		}
		imported, skipped := 0, 0 // Sync counters
		var totalAwarded int64    // Points awarded across the sync
		for _, a := range activities {
			externalID := a.ExternalID // Copy for the pointer column
			// Skip activities already imported
			var existing int64
			if err := db.Model(&domain.Workout{}).
				Where("source = ? AND external_id = ?", providerName, externalID).
				Count(&existing).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed"})
				return
			}
			if existing > 0 {
				skipped++ // Already imported, never double-award
				continue
			}
			workout := domain.Workout{
				UserID:       userID,         // Owner
				Source:       providerName,   // Provider source tag
				ExternalID:   &externalID,    // Provider activity ID
				ActivityType: a.ActivityType, // Normalized activity type
				DurationMin:  a.DurationMin,  // Duration
				Distance:     a.Distance,     // Distance in kilometers
				StartedAt:    a.StartedAt,    // Provider start time
			}
			// Each activity runs the full acceptance pipeline atomically
			err := db.Transaction(func(tx *gorm.DB) error {
				awarded, _, err := acceptWorkoutTx(tx, cfg, userID, &workout)
				totalAwarded += awarded
				return err
			})
			if err != nil {
				// A concurrent sync may have inserted the same activity
				skipped++
				continue
			}
			imported++
		}
		// Record the sync time on the connection
		now := time.Now().Unix()
		if err := db.Model(&token).Update("last_sync_at", now).Error; err != nil {
			logrus.WithField("user_id", userID).Warnf("failed to record sync time: %v", err)
		}
		// Log the sync outcome
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,       // User ID
			"provider":       providerName, // Provider name
			"imported":       imported,     // New workouts
			"skipped":        skipped,      // Duplicates
			"points_awarded": totalAwarded, // Points awarded across the sync
		}).Info("Provider sync completed")
		// Invalidate workout and points caches
		invalidateWorkoutCaches(context.Background(), rdb, userID)
		// Return sync summary
		c.JSON(http.StatusOK, gin.H{
			"imported":       imported,     // New workouts
			"skipped":        skipped,      // Duplicates
			"points_awarded": totalAwarded, // Points awarded across the sync
		})
	}
}

// DisconnectProviderHandler deletes the stored tokens for a provider
func DisconnectProviderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		provider := c.Param("provider") // Provider from the path
		if !validProviderName(provider) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider"})
			return
		}
		// Delete the connection row
		res := db.Where("user_id = ? AND provider = ?", userID, provider).
			Delete(&domain.FitnessToken{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disconnect"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provider not connected"})
			return
		}
		// Log the disconnect
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,   // User ID
			"provider": provider, // Provider name
		}).Info("Fitness provider disconnected")
		c.JSON(http.StatusOK, gin.H{"message": "Provider disconnected"})
	}
}

// FitnessStatusHandler reports connection status per provider, no token material
func FitnessStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var tokens []domain.FitnessToken // Stored connections
		if err := db.Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status"})
			return
		}
		// Status map keyed by provider
		status := map[string]gin.H{
			fitness.ProviderStrava: {"connected": false},
			fitness.ProviderFitbit: {"connected": false},
		}
		for _, t := range tokens {
			status[t.Provider] = gin.H{
				"connected":    true,           // Connection present
				"last_sync_at": t.LastSyncAt,   // Unix seconds, zero if never synced
				"expires_at":   t.ExpiresAt,    // Token expiry as unix seconds
			}
		}
		c.JSON(http.StatusOK, gin.H{"providers": status}) // Return per-provider status
	}
}
