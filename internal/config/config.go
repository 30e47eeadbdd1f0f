package config

import (
	"encoding/hex" // For decoding the token encryption key
	"os"           // For environment variables
	"strconv"      // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
	"github.com/sirupsen/logrus"
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	TokenEncKey []byte // 32-byte AES key for fitness token encryption

	// Point economy tunables
	BasePointsPerWorkout int64 // Base award before baseline scaling
	DailyEarnCap         int64 // Max workout points earnable per user per UTC day
	StoryCreateCost      int64 // Point cost of creating a story
	ChapterCost          int64 // Point cost of submitting a chapter
}

// envInt64 reads an integer environment variable, falling back to a default
func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def // Default when unset or invalid
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	// Decode the fitness token encryption key (hex, 32 bytes)
	encKey, err := hex.DecodeString(os.Getenv("TOKEN_ENC_KEY"))
	if err != nil || len(encKey) != 32 {
		encKey = nil // Fitness sync is disabled without a valid key
	}

	cfg := &Config{
		AppPort:     os.Getenv("APP_PORT"),          // Application port
		DBUser:      os.Getenv("DB_USER"),           // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:      os.Getenv("DB_HOST"),           // Database host
		DBPort:      os.Getenv("DB_PORT"),           // Database port
		DBName:      os.Getenv("DB_NAME"),           // Database name
		JWTSecret:   os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:   os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:     redisDB,                        // Redis database number
		IsProd:      os.Getenv("IS_PROD") == "true", // Is production environment
		TokenEncKey: encKey,                         // Token encryption key

		BasePointsPerWorkout: envInt64("BASE_POINTS_PER_WORKOUT", 50), // Base workout award
		DailyEarnCap:         envInt64("DAILY_EARN_CAP", 500),         // Daily workout earn cap
		StoryCreateCost:      envInt64("STORY_CREATE_COST", 100),      // Story creation cost
		ChapterCost:          envInt64("CHAPTER_COST", 25),            // Chapter submission cost
	}
	if cfg.TokenEncKey == nil {
		logrus.Warn("TOKEN_ENC_KEY missing or invalid; fitness provider sync disabled")
	}
	return cfg
}

// DSN builds the MySQL Data Source Name from the database settings
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}
