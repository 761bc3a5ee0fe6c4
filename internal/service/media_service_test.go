package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mediavault/internal/cache"
	"mediavault/internal/models"
	"mediavault/internal/testutil"
	"mediavault/internal/token"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{
		SessionSecret: "session-secret-for-tests",
		StreamSecret:  "stream-secret-for-tests",
		SessionTTL:    time.Hour,
		StreamTTL:     10 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestMediaService_Upload_Validation(t *testing.T) {
	svc := NewMediaService(testutil.NewMediaRepoStub(), testutil.NewBlobStub(), newTokenService(t), nil, 1<<20)
	ctx := context.Background()

	tests := []struct {
		name  string
		input UploadMediaInput
	}{
		{"missing title", UploadMediaInput{Type: "video", Size: 4, Content: strings.NewReader("data")}},
		{"whitespace title", UploadMediaInput{Title: "   ", Type: "video", Size: 4, Content: strings.NewReader("data")}},
		{"bad type", UploadMediaInput{Title: "clip", Type: "image", Size: 4, Content: strings.NewReader("data")}},
		{"no file", UploadMediaInput{Title: "clip", Type: "video"}},
		{"too large", UploadMediaInput{Title: "clip", Type: "video", Size: 2 << 20, Content: strings.NewReader("data")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media, err := svc.Upload(ctx, tt.input)
			require.Error(t, err)
			assert.Nil(t, media)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestMediaService_Upload_Success(t *testing.T) {
	repo := testutil.NewMediaRepoStub()
	blobs := testutil.NewBlobStub()
	svc := NewMediaService(repo, blobs, newTokenService(t), nil, 1<<20)
	ctx := context.Background()

	media, err := svc.Upload(ctx, UploadMediaInput{
		Title:    "Launch Video",
		Type:     "video",
		Filename: "launch.mp4",
		Size:     9,
		Content:  strings.NewReader("fake-mp4!"),
	})
	require.NoError(t, err)
	require.NotNil(t, media)
	assert.NotEmpty(t, media.ID)
	assert.Equal(t, "Launch Video", media.Title)
	assert.Equal(t, "video/mp4", media.ContentType())

	stored, err := repo.GetByID(ctx, media.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	size, err := blobs.Size(ctx, stored.Locator)
	require.NoError(t, err)
	assert.Equal(t, int64(9), size)
}

func TestMediaService_Upload_RollsBackBlobOnMetadataFailure(t *testing.T) {
	repo := testutil.NewMediaRepoStub()
	repo.CreateErr = models.NewInternalError(errors.New("db down"))
	blobs := testutil.NewBlobStub()
	svc := NewMediaService(repo, blobs, newTokenService(t), nil, 1<<20)

	media, err := svc.Upload(context.Background(), UploadMediaInput{
		Title:   "clip",
		Type:    "audio",
		Size:    4,
		Content: strings.NewReader("data"),
	})
	require.Error(t, err)
	assert.Nil(t, media)
	require.Len(t, blobs.Removed, 1, "orphaned blob must be removed")
}

func TestMediaService_Upload_ClearsStaleSnapshot(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := testutil.NewMediaRepoStub()
	svc := NewMediaService(repo, testutil.NewBlobStub(), newTokenService(t), rdb, 1<<20)

	media, err := svc.Upload(context.Background(), UploadMediaInput{
		Title:   "clip",
		Type:    "audio",
		Size:    4,
		Content: strings.NewReader("data"),
	})
	require.NoError(t, err)

	// No snapshot should survive under the new asset's key.
	assert.False(t, mr.Exists(cache.AnalyticsKey(media.ID)))
}

func TestMediaService_StreamURL(t *testing.T) {
	repo := testutil.NewMediaRepoStub()
	tokens := newTokenService(t)
	svc := NewMediaService(repo, testutil.NewBlobStub(), tokens, nil, 1<<20)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.MediaAsset{
		ID: "media-1", Title: "clip", Type: "video", Locator: "blob-1",
	}))

	t.Run("Success", func(t *testing.T) {
		result, err := svc.StreamURL(ctx, "media-1", "http://localhost:8080/")
		require.NoError(t, err)
		assert.Equal(t, 600, result.ExpiresInSeconds)
		assert.True(t, strings.HasPrefix(result.StreamURL, "http://localhost:8080/api/media/media-1/stream?token="), result.StreamURL)

		// The embedded token must verify for exactly this asset.
		raw := strings.TrimPrefix(result.StreamURL, "http://localhost:8080/api/media/media-1/stream?token=")
		claims, err := tokens.VerifyStream(raw)
		require.NoError(t, err)
		assert.Equal(t, "media-1", claims.MediaID)
	})

	t.Run("Unknown media", func(t *testing.T) {
		result, err := svc.StreamURL(ctx, "missing", "http://localhost:8080")
		require.Error(t, err)
		assert.Nil(t, result)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}
