package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/prefs"
	"github.com/Zachkp/folio/internal/session"
)

const visitorKey = "visitor"

// cookieMaxAge keeps the visitor cookie for a year.
const cookieMaxAge = 365 * 24 * 3600

// visitorMiddleware attaches the visitor session, issuing the cookie on
// first contact.
func (s *Server) visitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(session.CookieName)
		v, created := s.sessions.Get(id)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, v.ID, cookieMaxAge, "/", "", false, true)
		}
		c.Set(visitorKey, v)
		c.Next()
	}
}

func visitorFrom(c *gin.Context) *session.Visitor {
	return c.MustGet(visitorKey).(*session.Visitor)
}

// prefsFor loads the visitor's theme and language. Read failures fall back
// to the request hints.
func (s *Server) prefsFor(c *gin.Context, v *session.Visitor) prefs.Prefs {
	p, err := prefs.Load(c.Request.Context(), v.Store, prefs.Hints{
		PrefersColorScheme: c.GetHeader("Sec-CH-Prefers-Color-Scheme"),
		AcceptLanguage:     c.GetHeader("Accept-Language"),
	})
	if err != nil {
		s.log.Warn("loading preferences failed", "visitor", v.ID, "err", err)
	}
	return p
}

func isHTMX(c *gin.Context) bool { return c.GetHeader("HX-Request") == "true" }

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		level := slog.LevelDebug
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"htmx", isHTMX(c),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		logger.Log(c.Request.Context(), level, "request", attrs...)
	}
}
