// Package images manages user-supplied replacements for catalog images.
//
// Overrides are stored as data URLs in a kv.Store under a fixed naming
// convention and preferred over the catalog default whenever an image is
// rendered. Every successful write broadcasts an "image updated" signal.
package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"regexp"
	"strconv"

	_ "image/gif"  // GIF decoder for DecodeConfig.
	_ "image/jpeg" // JPEG decoder.
	_ "image/png"  // PNG decoder.

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // BMP decoder.
	_ "golang.org/x/image/webp" // WebP decoder.

	"github.com/Zachkp/folio/internal/kv"
)

// MaxUploadBytes is the default upload ceiling.
const MaxUploadBytes = 5 << 20

const (
	HomeAvatarKey   = "home-avatar"
	AboutProfileKey = "about-profile"
)

var (
	ErrTooLarge    = errors.New("images: file exceeds upload limit")
	ErrUnsupported = errors.New("images: unsupported image format")
	ErrInvalidKey  = errors.New("images: unknown image key")
)

var (
	coverKeyRe = regexp.MustCompile(`^project-cover-([A-Za-z0-9_]+)$`)
	slideKeyRe = regexp.MustCompile(`^project-image-([A-Za-z0-9_]+)-(\d+)$`)
)

var allowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp"}

// CoverKey is the override key of a project's cover image.
func CoverKey(projectID string) string { return "project-cover-" + projectID }

// SlideKey is the override key of one carousel slide.
func SlideKey(projectID string, index int) string {
	return "project-image-" + projectID + "-" + strconv.Itoa(index)
}

// ValidKey reports whether key follows one of the override naming conventions.
func ValidKey(key string) bool {
	switch key {
	case HomeAvatarKey, AboutProfileKey:
		return true
	}
	return coverKeyRe.MatchString(key) || slideKeyRe.MatchString(key)
}

// Target is the catalog image a project override key points at. Slide is -1
// for the cover.
type Target struct {
	ProjectID string
	Slide     int
}

// ParseKey splits a project cover or slide key. Other keys report false.
func ParseKey(key string) (Target, bool) {
	if m := coverKeyRe.FindStringSubmatch(key); m != nil {
		return Target{ProjectID: m[1], Slide: -1}, true
	}
	if m := slideKeyRe.FindStringSubmatch(key); m != nil {
		i, err := strconv.Atoi(m[2])
		if err != nil {
			return Target{}, false
		}
		return Target{ProjectID: m[1], Slide: i}, true
	}
	return Target{}, false
}

// Notifier receives the "image updated" signal.
type Notifier interface {
	Publish()
}

// Override describes a stored replacement image.
type Override struct {
	Key    string
	MIME   string
	Width  int
	Height int
	Bytes  int
	URL    string
}

// Service validates, stores and resolves overrides.
type Service struct {
	notify   Notifier
	maxBytes int64
	log      *slog.Logger
}

// NewService returns a Service. maxBytes <= 0 selects MaxUploadBytes.
func NewService(notify Notifier, maxBytes int64, logger *slog.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{notify: notify, maxBytes: maxBytes, log: logger}
}

// MaxBytes is the upload ceiling in bytes.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Upload validates r and stores it under key. declaredSize, when positive, is
// checked before anything is read. On any error the existing override is untouched.
func (s *Service) Upload(ctx context.Context, store kv.Store, key string, r io.Reader, declaredSize int64) (Override, error) {
	if !ValidKey(key) {
		return Override{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if declaredSize > s.maxBytes {
		return Override{}, ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Override{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Override{}, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return Override{}, fmt.Errorf("%w: %s", ErrUnsupported, mt.String())
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Override{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	url := "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := store.Set(ctx, key, url); err != nil {
		s.log.Warn("image override not saved", "key", key, "bytes", len(data), "err", err)
		return Override{}, fmt.Errorf("save %s: %w", key, err)
	}
	if s.notify != nil {
		s.notify.Publish()
	}
	s.log.Info("image override saved", "key", key, "mime", mt.String(), "bytes", len(data))
	return Override{
		Key:    key,
		MIME:   mt.String(),
		Width:  cfg.Width,
		Height: cfg.Height,
		Bytes:  len(data),
		URL:    url,
	}, nil
}

// Resolve returns the stored override for key, or def when there is none or
// the store cannot be read.
func (s *Service) Resolve(ctx context.Context, store kv.Store, key, def string) string {
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		s.log.Warn("image override lookup failed", "key", key, "err", err)
		return def
	}
	if !ok || v == "" {
		return def
	}
	return v
}

// Remove deletes an override and broadcasts the change.
func (s *Service) Remove(ctx context.Context, store kv.Store, key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := store.Delete(ctx, key); err != nil {
		return err
	}
	if s.notify != nil {
		s.notify.Publish()
	}
	return nil
}

// Resolver binds a Service to one store, for callers that only look images up.
func (s *Service) Resolver(ctx context.Context, store kv.Store) func(key, def string) string {
	return func(key, def string) string { return s.Resolve(ctx, store, key, def) }
}
