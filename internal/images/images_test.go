package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/Zachkp/folio/internal/kv"
)

type countingNotifier struct{ n int }

func (c *countingNotifier) Publish() { c.n++ }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 63, G: 81, B: 181, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestKeys(t *testing.T) {
	if got := CoverKey("2"); got != "project-cover-2" {
		t.Fatalf("CoverKey = %q", got)
	}
	if got := SlideKey("3", 1); got != "project-image-3-1" {
		t.Fatalf("SlideKey = %q", got)
	}
	for _, k := range []string{"home-avatar", "about-profile", "project-cover-1", "project-image-1-0"} {
		if !ValidKey(k) {
			t.Errorf("ValidKey(%q) = false", k)
		}
	}
	for _, k := range []string{"theme", "project-image-1-x", "project-cover-", "../etc"} {
		if ValidKey(k) {
			t.Errorf("ValidKey(%q) = true", k)
		}
	}
}

func TestUploadStoresDataURLAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	n := &countingNotifier{}
	svc := NewService(n, 0, nil)

	data := pngBytes(t, 12, 8)
	ov, err := svc.Upload(ctx, store, CoverKey("1"), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ov.MIME != "image/png" || ov.Width != 12 || ov.Height != 8 {
		t.Fatalf("override = %+v", ov)
	}
	if !strings.HasPrefix(ov.URL, "data:image/png;base64,") {
		t.Fatalf("url = %.40s", ov.URL)
	}
	if got := svc.Resolve(ctx, store, CoverKey("1"), "default.png"); got != ov.URL {
		t.Fatalf("resolve did not prefer override")
	}
	if n.n != 1 {
		t.Fatalf("notifications = %d, want 1", n.n)
	}
}

func TestUploadRejectsOversizedFileAndKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	n := &countingNotifier{}
	svc := NewService(n, 0, nil)
	if err := store.Set(ctx, HomeAvatarKey, "data:image/png;base64,OLD"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	big := make([]byte, 6<<20)
	_, err := svc.Upload(ctx, store, HomeAvatarKey, bytes.NewReader(big), int64(len(big)))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	// Same result when the size is not declared up front.
	_, err = svc.Upload(ctx, store, HomeAvatarKey, bytes.NewReader(big), -1)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("undeclared size: err = %v, want ErrTooLarge", err)
	}
	if got := svc.Resolve(ctx, store, HomeAvatarKey, ""); got != "data:image/png;base64,OLD" {
		t.Fatalf("previous image replaced: %q", got)
	}
	if n.n != 0 {
		t.Fatalf("rejected upload broadcast a change")
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	svc := NewService(nil, 0, nil)
	_, err := svc.Upload(context.Background(), kv.NewMemory(0), AboutProfileKey, strings.NewReader("<html>hi</html>"), 15)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestUploadQuotaFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(64)
	n := &countingNotifier{}
	svc := NewService(n, 0, nil)
	data := pngBytes(t, 4, 4)
	_, err := svc.Upload(ctx, store, SlideKey("1", 0), bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	if got := svc.Resolve(ctx, store, SlideKey("1", 0), "catalog.png"); got != "catalog.png" {
		t.Fatalf("resolve = %q, want catalog default", got)
	}
	if n.n != 0 {
		t.Fatalf("failed write broadcast a change")
	}
}

func TestUploadRejectsUnknownKey(t *testing.T) {
	svc := NewService(nil, 0, nil)
	data := pngBytes(t, 2, 2)
	_, err := svc.Upload(context.Background(), kv.NewMemory(0), "theme", bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("err = %v, want ErrInvalidKey", err)
	}
}

func TestRemoveFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	n := &countingNotifier{}
	svc := NewService(n, 0, nil)
	_ = store.Set(ctx, CoverKey("2"), "data:image/png;base64,X")
	if err := svc.Remove(ctx, store, CoverKey("2")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := svc.Resolver(ctx, store)(CoverKey("2"), "cover.png"); got != "cover.png" {
		t.Fatalf("resolve = %q", got)
	}
	if n.n != 1 {
		t.Fatalf("notifications = %d", n.n)
	}
}

func TestParseKey(t *testing.T) {
	cases := []struct {
		key  string
		want Target
		ok   bool
	}{
		{"project-cover-7", Target{ProjectID: "7", Slide: -1}, true},
		{"project-image-3-2", Target{ProjectID: "3", Slide: 2}, true},
		{"home-avatar", Target{}, false},
		{"project-image-3", Target{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseKey(tc.key)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseKey(%q) = %+v, %v", tc.key, got, ok)
		}
	}
}
