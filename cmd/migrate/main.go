package main

import (
	"lorefit/internal/config" // Custom import path (Config)
	"lorefit/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	db.Migrate(cfg.DSN()) // Run schema migration against MySQL
}
