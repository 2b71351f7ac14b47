package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/broadcast"
	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/cv"
	"github.com/Zachkp/folio/internal/i18n"
	"github.com/Zachkp/folio/internal/kv"
	"github.com/Zachkp/folio/internal/prefs"
)

// Home page
func (s *Server) handleIndex(c *gin.Context) {
	v := visitorFrom(c)
	s.observeReveal(v)
	c.HTML(http.StatusOK, "index.html", s.pageView(c, v))
}

// Works grid fragment. An unknown category yields the empty state with a
// control back to All.
func (s *Server) handleWorks(c *gin.Context) {
	v := visitorFrom(c)
	if f, ok := c.GetQuery("filter"); ok {
		v.SetFilter(f)
	}
	p := s.prefsFor(c, v)
	c.HTML(http.StatusOK, "works.html", s.worksView(c, v, p.Language))
}

// Downloadable CV
func (s *Server) handleCV(c *gin.Context) {
	v := visitorFrom(c)
	lang := c.Query("lang")
	if lang == "" {
		lang = s.prefsFor(c, v).Language
	}
	lang = i18n.Normalize(lang)

	var buf bytes.Buffer
	if err := cv.Write(&buf, s.catalog(lang), s.tr.For(lang), cv.Options{Author: "Jaakko"}); err != nil {
		s.log.Error("rendering CV failed", "lang", lang, "err", err)
		c.String(http.StatusInternalServerError, "could not render CV")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="jaakko-cv-`+lang+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Server-sent "image updated" notifications.
func (s *Server) handleEvents(c *gin.Context) {
	ch, cancel := s.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(broadcast.TopicImageUpdated, "refresh")
			return true
		}
	})
}

type revealRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type revealStep struct {
	ID      string `json:"id"`
	DelayMs int64  `json:"delay_ms"`
}

// Blocks that just scrolled into view. The visitor's scheduler assigns
// delays to the ones still waiting and remembers them once they fire, so a
// block never animates twice.
func (s *Server) handleReveal(c *gin.Context) {
	v := visitorFrom(c)
	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	steps := v.Reveal.Intersect(req.IDs...)
	out := make([]revealStep, len(steps))
	for i, st := range steps {
		out[i] = revealStep{ID: st.ID, DelayMs: st.Delay.Milliseconds()}
	}
	c.JSON(http.StatusOK, gin.H{"steps": out})
}

func (s *Server) handleToggleTheme(c *gin.Context) {
	v := visitorFrom(c)
	p := s.prefsFor(c, v)
	if _, err := prefs.ToggleTheme(c.Request.Context(), v.Store, p.Theme); err != nil {
		s.storageWarning(c, p.Language, prefs.ThemeKey, err)
		return
	}
	c.Header("HX-Refresh", "true")
	c.Status(http.StatusNoContent)
}

// Switching language also resets the works filter, whose values are
// localized category names.
func (s *Server) handleSetLanguage(c *gin.Context) {
	v := visitorFrom(c)
	lang, err := prefs.SetLanguage(c.Request.Context(), v.Store, c.PostForm("lang"))
	if err != nil {
		s.storageWarning(c, lang, prefs.LanguageKey, err)
		return
	}
	v.SetFilter(catalog.All)
	if id := v.Viewer.ProjectID(); id != "" {
		if p, err := s.catalog(lang).Project(id); err == nil {
			v.Viewer.Refresh(catalog.ApplyOverrides([]catalog.Project{p}, s.images.Resolver(c.Request.Context(), v.Store))[0])
		}
	}
	c.Header("HX-Refresh", "true")
	c.Status(http.StatusNoContent)
}

// storageWarning renders the non-fatal warning for a failed preference write.
func (s *Server) storageWarning(c *gin.Context, lang, key string, err error) {
	s.log.Warn("preference not saved", "key", key, "err", err)
	msg := s.tr.T(lang, "upload.failed")
	if errors.Is(err, kv.ErrQuotaExceeded) {
		msg = s.tr.T(lang, "upload.quota")
	}
	c.Header("HX-Retarget", "#upload-warning")
	c.Header("HX-Reswap", "innerHTML")
	c.HTML(http.StatusOK, "upload-warning.html", warningView{Lang: lang, Key: key, Message: msg})
}
