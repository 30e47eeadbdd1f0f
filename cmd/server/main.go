package main

import (
	"context"                     // context package is needed for Redis operations
	"log"                         // log package is needed for logging
	"lorefit/internal/api"        // Custom package for API handlers
	"lorefit/internal/config"     // Custom package for configuration
	"lorefit/internal/middleware" // Custom package for middleware
	"lorefit/internal/utils"      // Custom package for JWT/cache/crypto helpers

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Token cipher for fitness provider tokens (nil disables fitness sync)
	var tokenCipher *utils.TokenCipher
	if cfg.TokenEncKey != nil {
		tokenCipher, err = utils.NewTokenCipher(cfg.TokenEncKey)
		if err != nil {
			logrus.Fatalf("failed to build token cipher: %v", err)
		}
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/signup", api.SignupHandler(db))              // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// All routes below require a valid JWT
	authed := r.Group("/")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	// Account routes
	authed.POST("/auth/password", api.ChangePasswordHandler(db)) // Password change endpoint
	authed.GET("/auth/me", api.MeHandler(db))                    // Current user endpoint

	// Profile routes
	authed.GET("/profile", api.GetProfileHandler(db, redisClient))    // Get profile endpoint
	authed.PUT("/profile", api.UpdateProfileHandler(db, redisClient)) // Update profile endpoint

	// Points routes (ledger is read-only over HTTP)
	authed.GET("/points", api.GetPointsHandler(db, redisClient))                // Balance endpoint
	authed.GET("/points/history", api.GetPointsHistoryHandler(db, redisClient)) // Ledger history endpoint

	// Workout and baseline routes
	authed.POST("/workouts", api.CreateWorkoutHandler(db, redisClient, cfg)) // Log workout endpoint
	authed.GET("/workouts", api.ListWorkoutsHandler(db, redisClient))        // Workout list endpoint
	authed.GET("/baselines", api.ListBaselinesHandler(db))                   // Baseline list endpoint

	// Fitness provider routes
	authed.GET("/fitness", api.FitnessStatusHandler(db))                            // Connection status endpoint
	authed.POST("/fitness/connect/:provider", api.ConnectProviderHandler(db, tokenCipher)) // Connect endpoint
	authed.POST("/fitness/sync/:provider", api.SyncProviderHandler(db, redisClient, cfg, tokenCipher, api.DefaultProviderFactory)) // Sync endpoint
	authed.DELETE("/fitness/:provider", api.DisconnectProviderHandler(db)) // Disconnect endpoint

	// Challenge routes
	authed.GET("/challenges", api.ListChallengesHandler(db, redisClient))         // Active challenge list endpoint
	authed.POST("/challenges/:id/join", api.JoinChallengeHandler(db))             // Join endpoint
	authed.GET("/challenges/:id/progress", api.GetChallengeProgressHandler(db))   // Progress endpoint

	// Story routes
	authed.POST("/stories", api.CreateStoryHandler(db, redisClient, cfg))             // Create story endpoint
	authed.GET("/stories", api.ListStoriesHandler(db, redisClient))                   // Story list endpoint
	authed.GET("/stories/:id", api.GetStoryHandler(db, redisClient))                  // Story detail endpoint
	authed.POST("/stories/:id/chapters", api.CreateChapterHandler(db, redisClient, cfg)) // Submit chapter endpoint
	authed.POST("/stories/:id/close", api.CloseStoryHandler(db, redisClient))         // Close story endpoint
	authed.POST("/chapters/:id/vote", api.VoteChapterHandler(db, redisClient))        // Vote endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))            // List users endpoint
	adminGroup.GET("/ledger", api.ListLedgerHandler(db, redisClient))          // List ledger entries endpoint
	adminGroup.POST("/points/grant", api.GrantPointsHandler(db, redisClient))  // Manual grant endpoint
	adminGroup.POST("/challenges", api.CreateChallengeHandler(db, redisClient)) // Create challenge endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
