// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"mediavault/internal/models"
)

// MediaRepoStub is an in-memory media metadata repository for tests.
type MediaRepoStub struct {
	mu    sync.Mutex
	items map[string]*models.MediaAsset

	// CreateErr, when set, is returned by Create to simulate DB failure.
	CreateErr error
}

// NewMediaRepoStub creates an in-memory media repository stub.
func NewMediaRepoStub() *MediaRepoStub {
	return &MediaRepoStub{items: make(map[string]*models.MediaAsset)}
}

// Create stores media metadata in-memory.
func (s *MediaRepoStub) Create(_ context.Context, media *models.MediaAsset) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}
	cp := *media
	s.items[media.ID] = &cp
	return nil
}

// GetByID fetches an asset by ID, returning (nil, nil) when absent.
func (s *MediaRepoStub) GetByID(_ context.Context, id string) (*models.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

// List returns stored assets newest first.
func (s *MediaRepoStub) List(_ context.Context, limit, offset int) ([]models.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.MediaAsset, 0, len(s.items))
	for _, item := range s.items {
		all = append(all, *item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// ViewLogStub is an in-memory append-only view ledger for tests. ListCalls
// counts ledger reads so tests can assert that cache hits skip the ledger.
type ViewLogStub struct {
	mu     sync.Mutex
	events []models.MediaViewLog
	nextID uint

	ListCalls int
	// AppendErr, when set, is returned by Append.
	AppendErr error
}

// NewViewLogStub creates an in-memory view ledger stub.
func NewViewLogStub() *ViewLogStub {
	return &ViewLogStub{nextID: 1}
}

// Append records a view event.
func (s *ViewLogStub) Append(_ context.Context, event *models.MediaViewLog) error {
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.nextID
	s.nextID++
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, *event)
	return nil
}

// ListByMedia returns events for the asset in insertion order.
func (s *ViewLogStub) ListByMedia(_ context.Context, mediaID string) ([]models.MediaViewLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	var out []models.MediaViewLog
	for _, e := range s.events {
		if e.MediaID == mediaID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Events returns a copy of every recorded event.
func (s *ViewLogStub) Events() []models.MediaViewLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MediaViewLog, len(s.events))
	copy(out, s.events)
	return out
}

// BlobStub is an in-memory blob store for tests.
type BlobStub struct {
	mu    sync.Mutex
	blobs map[string][]byte
	seq   int

	// PutErr, when set, is returned by Put.
	PutErr error
	// Removed collects locators passed to Remove, for rollback assertions.
	Removed []string
}

// NewBlobStub creates an in-memory blob store stub.
func NewBlobStub() *BlobStub {
	return &BlobStub{blobs: make(map[string][]byte)}
}

// Seed stores content under a fixed locator.
func (s *BlobStub) Seed(locator string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[locator] = content
}

// Put stores the content under a generated locator.
func (s *BlobStub) Put(_ context.Context, r io.Reader, _ int64, _ string) (string, error) {
	if s.PutErr != nil {
		return "", s.PutErr
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	locator := fmt.Sprintf("blob-%d", s.seq)
	s.blobs[locator] = content
	return locator, nil
}

// Exists reports whether the locator is stored.
func (s *BlobStub) Exists(_ context.Context, locator string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[locator]
	return ok, nil
}

// Size returns the stored blob length.
func (s *BlobStub) Size(_ context.Context, locator string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.blobs[locator]
	if !ok {
		return 0, fmt.Errorf("blob %q not found", locator)
	}
	return int64(len(content)), nil
}

// OpenRange returns the inclusive [start, end] window of the blob.
func (s *BlobStub) OpenRange(_ context.Context, locator string, start, end int64) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.blobs[locator]
	if !ok {
		return nil, fmt.Errorf("blob %q not found", locator)
	}
	if start < 0 || end >= int64(len(content)) || end < start {
		return nil, fmt.Errorf("window [%d, %d] out of bounds for %d bytes", start, end, len(content))
	}
	return io.NopCloser(bytes.NewReader(content[start : end+1])), nil
}

// Remove deletes the blob and records the call.
func (s *BlobStub) Remove(_ context.Context, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, locator)
	s.Removed = append(s.Removed, locator)
	return nil
}
