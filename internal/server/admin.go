package server

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/images"
	"github.com/Zachkp/folio/internal/session"
)

const adminCookie = "admin_token"

// adminAuth holds the per-process admin token. Credentials come from config;
// without a password the login only works in debug mode with the
// development defaults.
type adminAuth struct {
	token    string
	username string
	password string
	log      *slog.Logger
}

func newAdminAuth(cfg config.AdminConfig, logger *slog.Logger) *adminAuth {
	a := &adminAuth{
		token:    randomHex(32),
		username: cfg.Username,
		password: cfg.Password,
		log:      logger.With("component", "admin"),
	}
	if a.username == "" {
		a.username = "admin"
	}
	if a.password == "" && gin.Mode() == gin.DebugMode {
		a.password = "admin123"
		a.log.Warn("using default admin password; set ADMIN_PASSWORD")
	}
	return a
}

func (a *adminAuth) enabled() bool { return a.password != "" }

func (a *adminAuth) check(username, password string) bool {
	if !a.enabled() {
		return false
	}
	u := sha256.Sum256([]byte(username))
	p := sha256.Sum256([]byte(password))
	wantU := sha256.Sum256([]byte(a.username))
	wantP := sha256.Sum256([]byte(a.password))
	return subtle.ConstantTimeCompare(u[:], wantU[:])&subtle.ConstantTimeCompare(p[:], wantP[:]) == 1
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OverrideEntry is one stored replacement image, across all visitors.
type OverrideEntry struct {
	StoreKey string
	Visitor  string
	Key      string
	Size     string
	bytes    int
}

// overrides lists every stored image override, largest first.
func (s *Server) overrides(ctx context.Context) ([]OverrideEntry, error) {
	keys, err := s.store.Keys(ctx, session.KeyPrefix)
	if err != nil {
		return nil, err
	}
	var out []OverrideEntry
	for _, k := range keys {
		rest := strings.TrimPrefix(k, session.KeyPrefix)
		visitor, key, ok := strings.Cut(rest, ":")
		if !ok || !images.ValidKey(key) {
			continue
		}
		v, found, err := s.store.Get(ctx, k)
		if err != nil || !found {
			continue
		}
		short := visitor
		if len(short) > 8 {
			short = short[:8]
		}
		out = append(out, OverrideEntry{
			StoreKey: k,
			Visitor:  short,
			Key:      key,
			Size:     humanize.Bytes(uint64(len(v))),
			bytes:    len(v),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].bytes > out[j].bytes })
	return out, nil
}

type dashboardView struct {
	Stats     *AdminStats
	Tracking  bool
	Overrides []OverrideEntry
	Visitors  int
	Error     string
}

func (s *Server) dashboard(ctx context.Context) (dashboardView, error) {
	view := dashboardView{Tracking: s.tracker != nil, Visitors: s.sessions.Len()}
	if s.tracker != nil {
		stats, err := s.tracker.Stats(ctx)
		if err != nil {
			return view, err
		}
		view.Stats = stats
	}
	ovs, err := s.overrides(ctx)
	if err != nil {
		return view, err
	}
	view.Overrides = ovs
	return view, nil
}

// clientHash identifies the admin's client in logs without the raw IP.
func (s *Server) clientHash(c *gin.Context) string {
	if s.tracker != nil {
		return s.tracker.HashIP(c.ClientIP())
	}
	sum := sha256.Sum256([]byte(c.ClientIP()))
	return hex.EncodeToString(sum[:8])
}

// Setup all admin routes
func (s *Server) setupAdminRoutes(r *gin.Engine) {
	a := s.admin

	// Privacy policy route
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{"title": "Privacy Policy"})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if a.check(c.PostForm("username"), c.PostForm("password")) {
			c.SetSameSite(http.SameSiteStrictMode)
			c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", false, true)
			a.log.Info("admin login successful", "client", s.clientHash(c))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		a.log.Warn("failed admin login attempt", "client", s.clientHash(c))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	g := r.Group("/admin")
	g.Use(a.middleware())

	g.GET("/dashboard", func(c *gin.Context) {
		view, err := s.dashboard(c.Request.Context())
		if err != nil {
			a.log.Error("loading admin stats failed", "err", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", view)
	})

	g.GET("/api/stats", func(c *gin.Context) {
		view, err := s.dashboard(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"visitors":  view.Stats,
			"live":      view.Visitors,
			"overrides": len(view.Overrides),
		})
	})

	// Removes one visitor's override and tells open pages to re-render.
	g.POST("/overrides/delete", func(c *gin.Context) {
		storeKey := c.PostForm("key")
		rest, ok := strings.CutPrefix(storeKey, session.KeyPrefix)
		if !ok {
			c.String(http.StatusBadRequest, "not an override key")
			return
		}
		if _, key, ok := strings.Cut(rest, ":"); !ok || !images.ValidKey(key) {
			c.String(http.StatusBadRequest, "not an override key")
			return
		}
		if err := s.store.Delete(c.Request.Context(), storeKey); err != nil {
			a.log.Error("deleting override failed", "key", storeKey, "err", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to delete image"})
			return
		}
		s.hub.Publish()
		a.log.Info("override deleted by admin", "key", storeKey, "client", s.clientHash(c))
		c.Redirect(http.StatusSeeOther, "/admin/dashboard")
	})

	// Privacy cleanup of visitor rows past retention
	g.POST("/privacy/cleanup", func(c *gin.Context) {
		if s.tracker == nil {
			c.JSON(http.StatusOK, gin.H{"removed": 0})
			return
		}
		n, err := s.tracker.Cleanup(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": n})
	})

	// Admin statistics export (for backups or analysis)
	g.GET("/export/stats", func(c *gin.Context) {
		view, err := s.dashboard(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, view.Stats)
	})
}
