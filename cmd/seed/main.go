// Command main runs the database seeder for MediaVault.
package main

import (
	"context"
	"flag"
	"log"

	"mediavault/internal/config"
	"mediavault/internal/database"
	"mediavault/internal/seed"
	"mediavault/internal/storage"
)

func main() {
	numAssets := flag.Int("assets", 20, "Number of media assets to create")
	viewsPerItem := flag.Int("views", 50, "Maximum view events per asset")
	adminEmail := flag.String("admin-email", "admin@mediavault.local", "Admin account email")
	adminPassword := flag.String("admin-password", "ChangeMe123!!", "Admin account password")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d assets, up to %d views each, clean=%v\n", *numAssets, *viewsPerItem, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	blobs, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	s := seed.NewSeeder(db, blobs)
	ctx := context.Background()

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if _, err := s.SeedAdmin(*adminEmail, *adminPassword); err != nil {
		log.Fatalf("Admin seeding failed: %v", err)
	}

	assets, err := s.SeedMedia(ctx, *numAssets)
	if err != nil {
		log.Fatalf("Media seeding failed: %v", err)
	}

	if _, err := s.SeedViews(assets, *viewsPerItem); err != nil {
		log.Fatalf("View seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
}
