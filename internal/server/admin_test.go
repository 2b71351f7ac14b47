package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Zachkp/folio/internal/kv"
	"github.com/Zachkp/folio/internal/session"
)

func openTestDB(t *testing.T) *kv.SQLite {
	t.Helper()
	db, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "folio.db"), 0)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAdminRequiresLogin(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.Config.Admin.Password = "s3cret" })
	c := newClient(s.Handler())

	rec := c.get("/admin/dashboard")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin/login" {
		t.Fatalf("dashboard without login = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = c.post("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", rec.Code)
	}
	if _, ok := c.cookies[adminCookie]; ok {
		t.Fatalf("bad login issued a token")
	}

	rec = c.post("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin/dashboard" {
		t.Fatalf("login = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = c.get("/admin/dashboard")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Image overrides") {
		t.Fatalf("dashboard = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Visitor tracking is disabled.") {
		t.Fatalf("dashboard should say tracking is off")
	}

	c.get("/admin/logout")
	if rec := c.get("/admin/dashboard"); rec.Code != http.StatusFound {
		t.Fatalf("dashboard after logout = %d", rec.Code)
	}
}

func TestAdminLoginDisabledWithoutPassword(t *testing.T) {
	s := newTestServer(t, nil)
	c := newClient(s.Handler())
	rec := c.post("/admin/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login without configured password = %d", rec.Code)
	}
}

func TestAdminDeletesOverride(t *testing.T) {
	store := kv.NewMemory(0)
	s := newTestServer(t, func(o *Options) {
		o.Store = store
		o.Config.Admin.Password = "s3cret"
	})

	visitor := newClient(s.Handler())
	if rec := visitor.upload(t, "about-profile", pngBytes(t)); rec.Code != http.StatusOK {
		t.Fatalf("upload = %d", rec.Code)
	}
	storeKey := session.Namespace(visitor.visitorID(t)) + "about-profile"

	admin := newClient(s.Handler())
	admin.post("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	rec := admin.get("/admin/dashboard")
	if !strings.Contains(rec.Body.String(), storeKey) {
		t.Fatalf("override %s not listed", storeKey)
	}

	ch, cancel := s.Hub().Subscribe()
	defer cancel()

	if rec := admin.post("/admin/overrides/delete", url.Values{"key": {"theme"}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-override key = %d", rec.Code)
	}
	rec = admin.post("/admin/overrides/delete", url.Values{"key": {storeKey}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete = %d", rec.Code)
	}
	if _, ok, _ := store.Get(context.Background(), storeKey); ok {
		t.Fatalf("override still stored")
	}
	select {
	case <-ch:
	default:
		t.Fatalf("delete did not publish image-updated")
	}
}

func TestTrackerMiddlewareAndStats(t *testing.T) {
	db := openTestDB(t)
	s := newTestServer(t, func(o *Options) {
		o.DB = db.DB()
		o.Config.Admin.Password = "s3cret"
	})
	c := newClient(s.Handler())

	c.get("/")
	c.get("/")
	c.get("/static/site.css")
	c.get("/healthz")
	c.headers.Set("DNT", "1")
	c.get("/")
	c.headers.Del("DNT")
	c.post("/viewer/next", nil)
	s.Tracker().Wait()

	stats, err := s.Tracker().Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVisitors != 2 {
		t.Fatalf("total = %d, want 2", stats.TotalVisitors)
	}
	if stats.UniqueVisitors != 1 || stats.VisitorsToday != 2 {
		t.Fatalf("unique = %d today = %d", stats.UniqueVisitors, stats.VisitorsToday)
	}
	if len(stats.TopPaths) != 1 || stats.TopPaths[0].Path != "/" || stats.TopPaths[0].Views != 2 {
		t.Fatalf("top paths = %+v", stats.TopPaths)
	}

	admin := newClient(s.Handler())
	admin.post("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	rec := admin.get("/admin/api/stats")
	var body struct {
		Visitors AdminStats `json:"visitors"`
		Live     int        `json:"live"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode stats: %v (%s)", err, rec.Body.String())
	}
	if body.Visitors.TotalVisitors != 2 || body.Live != 1 {
		t.Fatalf("api stats = %+v", body)
	}
}

func TestTrackerHashAndCleanup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tr, err := NewTracker(ctx, db.DB(), nil)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}

	h := tr.HashIP("192.0.2.10")
	if len(h) != 16 || h != tr.HashIP("192.0.2.10") || h == tr.HashIP("192.0.2.11") {
		t.Fatalf("hash = %q", h)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now.AddDate(-2, 0, 0) }
	tr.Record(ctx, "192.0.2.10", "old", "/")
	tr.now = func() time.Time { return now }
	tr.Record(ctx, "192.0.2.10", "new", "/works")

	n, err := tr.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d rows, want 1", n)
	}
	recent, err := tr.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Path != "/works" || !recent[0].Timestamp.Equal(now) {
		t.Fatalf("recent = %+v", recent)
	}
}
