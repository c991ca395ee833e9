// Package images stores trade screenshots on disk under opaque filenames.
package images

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound = errors.New("image not found")
	ErrInvalid  = errors.New("invalid image payload")
)

var dataURI = regexp.MustCompile(`^data:([A-Za-z-+/]+);base64,(.+)$`)

// FileStore keeps one file per image in a directory.
type FileStore struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &FileStore{
		dir: dir,
		log: log.With().Str("component", "images").Logger(),
		now: time.Now,
	}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// Decode accepts a data URI or bare base64 and returns the image bytes.
func Decode(payload string) ([]byte, error) {
	b64 := strings.TrimSpace(payload)
	if m := dataURI.FindStringSubmatch(b64); m != nil {
		b64 = m[2]
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalid)
	}
	return data, nil
}

// Save writes the payload and returns its filename.
func (s *FileStore) Save(ctx context.Context, payload string) (string, error) {
	data, err := Decode(payload)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("img_%s_%d.png", uuid.NewString(), s.now().UnixMilli())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	return name, nil
}

// Delete removes an image. Failures are logged, never returned.
func (s *FileStore) Delete(ctx context.Context, filename string) {
	if filename == "" {
		return
	}
	path, err := s.path(filename)
	if err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("refusing to delete image")
		return
	}
	if err := os.Remove(path); err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("failed to delete image")
	}
}

// Read returns the image as a PNG data URI. Missing files yield ErrNotFound.
func (s *FileStore) Read(ctx context.Context, filename string) (string, error) {
	path, err := s.path(filename)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", filename, ErrNotFound)
		}
		return "", fmt.Errorf("read image %s: %w", filename, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// path keeps names inside the store directory.
func (s *FileStore) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid image name %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
