package database

import (
	"testing"

	"mediavault/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "media_assets", "media_view_logs"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}

	// Migrated schema must accept the core write path.
	media := &models.MediaAsset{ID: "media-1", Title: "clip", Type: "video", Locator: "blob-1"}
	require.NoError(t, db.Create(media).Error)
	require.NoError(t, db.Create(&models.MediaViewLog{MediaID: "media-1", ViewedBy: "127.0.0.1"}).Error)

	var count int64
	require.NoError(t, db.Model(&models.MediaViewLog{}).Where("media_id = ?", "media-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
