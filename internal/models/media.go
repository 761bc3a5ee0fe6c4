// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Media type enum values.
const (
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
)

// MediaAsset represents an uploaded media file's metadata. The bytes
// themselves live in the blob store under Locator; the row is immutable
// once created.
type MediaAsset struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Type      string    `gorm:"size:10;not null;index" json:"type"` // "video" or "audio"
	Locator   string    `gorm:"size:500;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidMediaType reports whether t is one of the supported media types.
func IsValidMediaType(t string) bool {
	return t == MediaTypeVideo || t == MediaTypeAudio
}

// ContentType returns the MIME type served for this asset's byte stream.
func (m *MediaAsset) ContentType() string {
	if m.Type == MediaTypeVideo {
		return "video/mp4"
	}
	return "audio/mpeg"
}
