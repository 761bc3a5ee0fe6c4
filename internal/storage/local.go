package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores blobs as flat files under a root directory. Locators are
// uuid-prefixed filenames that keep the upload's extension.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed and returns a Local store.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("storage: upload dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) path(locator string) (string, error) {
	// Locators are generated by Put, but reject separators anyway so a
	// corrupted database row cannot escape the root.
	if locator == "" || strings.ContainsAny(locator, `/\`) || strings.Contains(locator, "..") {
		return "", fmt.Errorf("storage: invalid locator %q", locator)
	}
	return filepath.Join(l.root, locator), nil
}

func (l *Local) Put(ctx context.Context, r io.Reader, size int64, filename string) (string, error) {
	locator := uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	path, err := l.path(locator)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: creating blob file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("storage: writing blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: closing blob: %w", err)
	}
	return locator, nil
}

func (l *Local) Exists(ctx context.Context, locator string) (bool, error) {
	path, err := l.path(locator)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *Local) Size(ctx context.Context, locator string) (int64, error) {
	path, err := l.path(locator)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("storage: stat blob: %w", err)
	}
	return info.Size(), nil
}

func (l *Local) OpenRange(ctx context.Context, locator string, start, end int64) (io.ReadCloser, error) {
	path, err := l.path(locator)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening blob: %w", err)
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: seeking blob: %w", err)
	}
	return &windowReader{
		Reader: io.LimitReader(f, end-start+1),
		closer: f,
	}, nil
}

func (l *Local) Remove(ctx context.Context, locator string) error {
	path, err := l.path(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing blob: %w", err)
	}
	return nil
}

// windowReader bounds a file to its byte window while closing the
// underlying file.
type windowReader struct {
	io.Reader
	closer io.Closer
}

func (w *windowReader) Close() error {
	return w.closer.Close()
}
