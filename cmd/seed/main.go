package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/SergeySenin/user-service/internal/config"
	"github.com/SergeySenin/user-service/internal/database"
	"github.com/SergeySenin/user-service/internal/logger"
	"github.com/SergeySenin/user-service/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev", "test", "clean":
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  test  - Seed test database with minimal data")
		fmt.Println("  clean - Remove all seed data (use with caution)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if err := database.Initialize(cfg.Database); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	seeder := seed.NewSeeder(database.DB)

	switch command {
	case "dev":
		log.Println("🌱 Seeding development database...")
		err = seeder.SeedDev()
	case "test":
		log.Println("🌱 Seeding test database...")
		err = seeder.SeedTest()
	case "clean":
		log.Println("🧹 Cleaning seed data...")
		err = seeder.Clean()
	}

	if err != nil {
		log.Fatalf("❌ Seed command failed: %v", err)
	}

	log.Println("✅ Done")
}
