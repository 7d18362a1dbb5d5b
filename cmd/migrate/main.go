package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/SergeySenin/user-service/internal/config"
	"github.com/SergeySenin/user-service/internal/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	log.Println("🔄 Connecting to database...")
	if err := database.Initialize(cfg.Database); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("📈 Running migrations...")
	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed")
}
