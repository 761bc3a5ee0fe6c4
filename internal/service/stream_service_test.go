package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mediavault/internal/models"
	"mediavault/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamFixture struct {
	svc    *StreamService
	views  *testutil.ViewLogStub
	tokens interface {
		IssueStream(mediaID string) (string, int, error)
	}
}

func newStreamFixture(t *testing.T, content []byte) *streamFixture {
	t.Helper()
	media := testutil.NewMediaRepoStub()
	blobs := testutil.NewBlobStub()
	views := testutil.NewViewLogStub()
	tokens := newTokenService(t)

	blobs.Seed("blob-1", content)
	require.NoError(t, media.Create(context.Background(), &models.MediaAsset{
		ID: "media-1", Title: "clip", Type: "video", Locator: "blob-1",
	}))

	analytics := NewAnalyticsService(views, media, nil, 5*time.Minute)
	return &streamFixture{
		svc:    NewStreamService(media, blobs, tokens, analytics),
		views:  views,
		tokens: tokens,
	}
}

func (f *streamFixture) streamToken(t *testing.T, mediaID string) string {
	t.Helper()
	raw, _, err := f.tokens.IssueStream(mediaID)
	require.NoError(t, err)
	return raw
}

func TestStreamService_Serve_FullBody(t *testing.T) {
	content := []byte("0123456789")
	f := newStreamFixture(t, content)

	result, err := f.svc.Serve(context.Background(), "media-1", f.streamToken(t, "media-1"), "", "10.0.0.1")
	require.NoError(t, err)
	defer result.Body.Close()

	assert.Equal(t, fiber.StatusOK, result.Plan.Status)
	assert.Equal(t, int64(10), result.Plan.Length)
	assert.Equal(t, "video/mp4", result.Plan.ContentType)

	body, err := io.ReadAll(result.Body)
	require.NoError(t, err)
	assert.Equal(t, content, body)
}

func TestStreamService_Serve_PartialWindow(t *testing.T) {
	f := newStreamFixture(t, []byte("0123456789"))

	result, err := f.svc.Serve(context.Background(), "media-1", f.streamToken(t, "media-1"), "bytes=2-5", "10.0.0.1")
	require.NoError(t, err)
	defer result.Body.Close()

	assert.Equal(t, fiber.StatusPartialContent, result.Plan.Status)
	assert.Equal(t, "bytes 2-5/10", result.Plan.ContentRange)
	assert.Equal(t, int64(4), result.Plan.Length)

	body, err := io.ReadAll(result.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("2345"), body)
}

func TestStreamService_Serve_OneViewPerDelivery(t *testing.T) {
	f := newStreamFixture(t, []byte("0123456789"))
	ctx := context.Background()
	tok := f.streamToken(t, "media-1")

	for i := 0; i < 3; i++ {
		result, err := f.svc.Serve(ctx, "media-1", tok, "bytes=0-3", "10.0.0.1")
		require.NoError(t, err)
		result.Body.Close()
	}

	events := f.views.Events()
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, "media-1", e.MediaID)
		assert.Equal(t, "10.0.0.1", e.ViewedBy)
	}
}

func TestStreamService_Serve_AuthFailures(t *testing.T) {
	f := newStreamFixture(t, []byte("0123456789"))
	ctx := context.Background()

	t.Run("Missing token", func(t *testing.T) {
		_, err := f.svc.Serve(ctx, "media-1", "", "", "10.0.0.1")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		_, err := f.svc.Serve(ctx, "media-1", "not.a.jwt", "", "10.0.0.1")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	})

	t.Run("Token for another asset", func(t *testing.T) {
		_, err := f.svc.Serve(ctx, "media-1", f.streamToken(t, "media-2"), "", "10.0.0.1")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})

	t.Run("Bad token on unknown asset stays unauthorized", func(t *testing.T) {
		_, err := f.svc.Serve(ctx, "missing", "not.a.jwt", "", "10.0.0.1")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	})

	assert.Empty(t, f.views.Events(), "failed deliveries record no views")
}

func TestStreamService_Serve_UnknownMedia(t *testing.T) {
	f := newStreamFixture(t, []byte("0123456789"))

	_, err := f.svc.Serve(context.Background(), "media-2", f.streamToken(t, "media-2"), "", "10.0.0.1")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestStreamService_Serve_MissingBlob(t *testing.T) {
	media := testutil.NewMediaRepoStub()
	blobs := testutil.NewBlobStub()
	views := testutil.NewViewLogStub()
	tokens := newTokenService(t)
	require.NoError(t, media.Create(context.Background(), &models.MediaAsset{
		ID: "media-1", Title: "clip", Type: "audio", Locator: "gone",
	}))
	svc := NewStreamService(media, blobs, tokens, NewAnalyticsService(views, media, nil, time.Minute))

	raw, _, err := tokens.IssueStream("media-1")
	require.NoError(t, err)

	_, err = svc.Serve(context.Background(), "media-1", raw, "", "10.0.0.1")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Empty(t, views.Events())
}

func TestStreamService_Serve_LedgerFailureFailsStream(t *testing.T) {
	f := newStreamFixture(t, []byte("0123456789"))
	f.views.AppendErr = errors.New("connection refused")

	result, err := f.svc.Serve(context.Background(), "media-1", f.streamToken(t, "media-1"), "", "10.0.0.1")
	require.Nil(t, result)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	assert.Empty(t, f.views.Events(), "a failed append leaves the ledger untouched")
}

func TestStreamService_Serve_UnsatisfiableRangeRecordsNoView(t *testing.T) {
	f := newStreamFixture(t, []byte("0123456789"))

	_, err := f.svc.Serve(context.Background(), "media-1", f.streamToken(t, "media-1"), "bytes=100-", "10.0.0.1")
	var rangeErr *RangeNotSatisfiableError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, int64(10), rangeErr.Total)
	assert.Empty(t, f.views.Events())
}
