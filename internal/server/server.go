// Package server is the HTTP surface of the portfolio: full pages, HTMX
// fragments for the works grid, the project viewer and the contact form,
// image uploads, the image-updated event stream and the admin dashboard.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/broadcast"
	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/clock"
	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/i18n"
	"github.com/Zachkp/folio/internal/images"
	"github.com/Zachkp/folio/internal/kv"
	"github.com/Zachkp/folio/internal/session"
	"github.com/Zachkp/folio/internal/viewer"
)

// Sections are the page landmarks the menu scrolls to, in page order.
var Sections = []string{"home", "about", "experience", "education", "works", "contact"}

// Options wires a Server.
type Options struct {
	Config config.Config
	Store  kv.Store
	// DB enables visitor tracking when set.
	DB        *sql.DB
	Clock     clock.Clock
	Submitter contact.Submitter
	Logger    *slog.Logger
}

type Server struct {
	cfg       config.Config
	engine    *gin.Engine
	store     kv.Store
	catalogs  map[string]*catalog.Catalog
	tr        *i18n.Translator
	hub       *broadcast.Hub
	images    *images.Service
	sessions  *session.Manager
	submitter contact.Submitter
	tracker   *Tracker
	admin     *adminAuth
	log       *slog.Logger
}

// New builds the server and its routes.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	catalogs, err := catalog.LoadAll()
	if err != nil {
		return nil, err
	}
	tr, err := i18n.Load()
	if err != nil {
		return nil, err
	}
	sub := opts.Submitter
	if sub == nil {
		sub = contact.Simulated{Latency: opts.Config.SubmitLatency()}
		if opts.Config.Contact.Fail {
			sub = contact.Simulated{Latency: opts.Config.SubmitLatency(), Err: contact.ErrSimulated}
		}
	}

	hub := broadcast.New()
	s := &Server{
		cfg:       opts.Config,
		store:     opts.Store,
		catalogs:  catalogs,
		tr:        tr,
		hub:       hub,
		images:    images.NewService(hub, opts.Config.Uploads.MaxBytes, logger.With("component", "images")),
		sessions:  session.NewManager(opts.Store, opts.Clock, opts.Config.SessionIdle(), logger.With("component", "session")),
		submitter: sub,
		admin:     newAdminAuth(opts.Config.Admin, logger),
		log:       logger,
	}
	if opts.DB != nil {
		s.tracker, err = NewTracker(ctx, opts.DB, logger.With("component", "tracking"))
		if err != nil {
			return nil, err
		}
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) routes() error {
	tmpl, err := parseTemplates(s.tr)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = s.images.MaxBytes() + 1<<20

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.StaticFS("/static", staticFS())

	s.setupAdminRoutes(r)

	site := r.Group("/")
	site.Use(s.visitorMiddleware())
	if s.tracker != nil {
		site.Use(s.tracker.Middleware())
	}

	site.GET("/", s.handleIndex)
	site.GET("/works", s.handleWorks)
	site.GET("/cv.pdf", s.handleCV)
	site.GET("/events", s.handleEvents)
	site.POST("/reveal", s.handleReveal)

	site.POST("/prefs/theme", s.handleToggleTheme)
	site.POST("/prefs/language", s.handleSetLanguage)

	site.GET("/projects/:id", s.handleOpenProject)
	v := site.Group("/viewer")
	{
		v.GET("", s.handleViewer)
		v.POST("/next", s.viewerAction(func(vw *viewer.Viewer) { vw.Next() }))
		v.POST("/prev", s.viewerAction(func(vw *viewer.Viewer) { vw.Prev() }))
		v.POST("/goto", s.handleGoto)
		v.POST("/fullscreen", s.viewerAction(func(vw *viewer.Viewer) { vw.EnterFullscreen() }))
		v.POST("/exit", s.viewerAction(func(vw *viewer.Viewer) { vw.ExitFullscreen() }))
		v.POST("/info", s.viewerAction(func(vw *viewer.Viewer) { vw.ToggleInfo() }))
		v.POST("/zoom", s.handleZoom)
		v.POST("/drag", s.handleDrag)
		v.POST("/touch", s.handleTouch)
		v.POST("/key", s.handleKey)
		v.POST("/loaded", s.viewerAction(func(vw *viewer.Viewer) { vw.ImageLoaded() }))
		v.POST("/share", s.viewerAction(func(vw *viewer.Viewer) { vw.Share() }))
		v.POST("/close", s.viewerAction(func(vw *viewer.Viewer) { vw.Close() }))
		v.POST("/dismiss", s.viewerAction(func(vw *viewer.Viewer) { vw.Dismiss() }))
	}

	site.POST("/images/:key", s.handleUpload)
	site.DELETE("/images/:key", s.handleRemoveImage)

	site.GET("/contact-form", s.handleContactForm)
	site.POST("/contact", s.handleContact)
	site.POST("/contact/reset", s.handleContactReset)

	s.engine = r
	return nil
}

// Handler is the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Sessions() *session.Manager { return s.sessions }
func (s *Server) Hub() *broadcast.Hub         { return s.hub }

// Tracker is nil when tracking is disabled.
func (s *Server) Tracker() *Tracker { return s.tracker }

// Maintain runs periodic upkeep until ctx ends: idle visitor sweeps and the
// visitor retention cleanup.
func (s *Server) Maintain(ctx context.Context, every time.Duration) error {
	if s.tracker != nil {
		if _, err := s.tracker.Cleanup(ctx); err != nil {
			s.log.Error("visitor cleanup failed", "err", err)
		}
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	cleanupEvery := 24 * time.Hour
	lastCleanup := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.log.Info("idle visitors dropped", "count", n)
			}
			if s.tracker != nil && time.Since(lastCleanup) >= cleanupEvery {
				lastCleanup = time.Now()
				if _, err := s.tracker.Cleanup(ctx); err != nil {
					s.log.Error("visitor cleanup failed", "err", err)
				}
			}
		}
	}
}

// Close releases visitor state and waits for background writes.
func (s *Server) Close() {
	s.sessions.CloseAll()
	if s.tracker != nil {
		s.tracker.Wait()
	}
}
