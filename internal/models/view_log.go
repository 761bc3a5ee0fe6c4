package models

import (
	"time"
)

// MediaViewLog is one authorized access to a media asset. Rows are
// append-only: they are never updated or deleted, and MediaID is not
// required to reference an existing asset at write time.
type MediaViewLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MediaID   string    `gorm:"size:36;not null;index" json:"media_id"`
	ViewedBy  string    `gorm:"size:64;not null" json:"viewed_by"` // normalized viewer IP
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
