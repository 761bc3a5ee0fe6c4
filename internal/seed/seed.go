// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"mediavault/internal/models"
	"mediavault/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumAssets    int
	ViewsPerItem int
	ShouldClean  bool
}

// Seeder populates the database and blob store with fake but plausible data.
type Seeder struct {
	db    *gorm.DB
	blobs storage.BlobStore
}

// NewSeeder creates a Seeder.
func NewSeeder(db *gorm.DB, blobs storage.BlobStore) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, blobs: blobs}
}

// ClearAll truncates every seeded table. Blobs are left behind; the upload
// dir is disposable in development.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.MediaViewLog{},
		&models.MediaAsset{},
		&models.User{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	log.Println("Cleared existing data")
	return nil
}

// SeedAdmin creates the administrator account used by the dev frontend.
func (s *Seeder) SeedAdmin(email, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, Password: string(hashed)}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	log.Printf("Created admin %s", email)
	return user, nil
}

// SeedMedia stores n fake assets with small random payloads.
func (s *Seeder) SeedMedia(ctx context.Context, n int) ([]models.MediaAsset, error) {
	assets := make([]models.MediaAsset, 0, n)
	for i := 0; i < n; i++ {
		mediaType := models.MediaTypeVideo
		ext := ".mp4"
		if i%3 == 0 {
			mediaType = models.MediaTypeAudio
			ext = ".mp3"
		}

		payload := make([]byte, 16<<10+rand.Intn(64<<10))
		if _, err := rand.Read(payload); err != nil {
			return nil, err
		}

		locator, err := s.blobs.Put(ctx, bytes.NewReader(payload), int64(len(payload)), gofakeit.Word()+ext)
		if err != nil {
			return nil, fmt.Errorf("store seed blob: %w", err)
		}

		asset := models.MediaAsset{
			ID:      uuid.NewString(),
			Title:   gofakeit.Sentence(4),
			Type:    mediaType,
			Locator: locator,
		}
		if err := s.db.Create(&asset).Error; err != nil {
			return nil, fmt.Errorf("create asset: %w", err)
		}
		assets = append(assets, asset)
	}
	log.Printf("Created %d media assets", len(assets))
	return assets, nil
}

// SeedViews appends up to viewsPerItem view events per asset, spread over
// the past two weeks across a small pool of fake viewer IPs.
func (s *Seeder) SeedViews(assets []models.MediaAsset, viewsPerItem int) (int, error) {
	ips := make([]string, 8)
	for i := range ips {
		ips[i] = gofakeit.IPv4Address()
	}

	total := 0
	now := time.Now().UTC()
	for _, asset := range assets {
		n := rand.Intn(viewsPerItem + 1)
		for i := 0; i < n; i++ {
			event := models.MediaViewLog{
				MediaID:   asset.ID,
				ViewedBy:  ips[rand.Intn(len(ips))],
				CreatedAt: now.Add(-time.Duration(rand.Intn(14*24)) * time.Hour),
			}
			if err := s.db.Create(&event).Error; err != nil {
				return total, fmt.Errorf("create view event: %w", err)
			}
			total++
		}
	}
	log.Printf("Created %d view events", total)
	return total, nil
}
