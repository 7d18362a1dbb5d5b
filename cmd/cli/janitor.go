package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SergeySenin/user-service/internal/database"
	"github.com/SergeySenin/user-service/internal/models"
	"github.com/SergeySenin/user-service/internal/storage"
)

var janitorDryRun bool

// janitorCmd reclaims avatar objects that no user record references.
// Failed uploads and superseded generations whose cleanup was interrupted
// leave such orphans behind by design.
var janitorCmd = &cobra.Command{
	Use:   "janitor",
	Short: "Delete avatar objects no user record references",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := database.Initialize(cfg.Database); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to connect to database: %v\n", err)
			os.Exit(1)
		}

		s3Client, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize S3 client: %v\n", err)
			os.Exit(1)
		}

		var users []models.User
		if err := database.DB.WithContext(ctx).Find(&users).Error; err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load user records: %v\n", err)
			os.Exit(1)
		}

		referenced := make(map[string]struct{})
		for _, u := range users {
			for _, key := range u.Avatar.Keys() {
				referenced[key] = struct{}{}
			}
		}

		stored, err := s3Client.ListKeys(ctx, cfg.Avatar.StorageRoot+"/")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list stored objects: %v\n", err)
			os.Exit(1)
		}

		var orphans []string
		for _, key := range stored {
			if _, ok := referenced[key]; !ok {
				orphans = append(orphans, key)
			}
		}

		fmt.Printf("%d stored objects, %d referenced, %d orphaned\n",
			len(stored), len(referenced), len(orphans))

		if janitorDryRun {
			for _, key := range orphans {
				fmt.Printf("would delete %s\n", key)
			}
			return
		}

		deleted := 0
		for _, key := range orphans {
			if err := s3Client.Delete(ctx, key); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to delete %s: %v\n", key, err)
				continue
			}
			deleted++
		}

		fmt.Printf("deleted %d orphaned objects\n", deleted)
	},
}

func init() {
	janitorCmd.Flags().BoolVar(&janitorDryRun, "dry-run", false, "List orphans without deleting")
}
