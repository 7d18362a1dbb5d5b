package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/SergeySenin/user-service/internal/config"
	"github.com/SergeySenin/user-service/internal/database"
	"github.com/SergeySenin/user-service/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "usersvc",
	Short: "User service admin CLI",
	Long: `Administrative tooling for the user service.
Mint auth tokens for testing and reclaim orphaned avatar objects.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using system environment variables")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
		_ = database.Close()
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(janitorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
