package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/images"
	"github.com/Zachkp/folio/internal/kv"
	"github.com/Zachkp/folio/internal/session"
)

// uploadSlack covers multipart framing around the file itself.
const uploadSlack = 64 << 10

// Replacement image upload. Every failure is answered with a warning
// fragment and the previous image stays in place.
func (s *Server) handleUpload(c *gin.Context) {
	v := visitorFrom(c)
	lang := s.prefsFor(c, v).Language
	key := c.Param("key")
	if !images.ValidKey(key) {
		c.String(http.StatusNotFound, "unknown image")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.images.MaxBytes()+uploadSlack)
	fh, err := c.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			s.uploadWarning(c, lang, key, images.ErrTooLarge)
			return
		}
		c.String(http.StatusBadRequest, "missing image file")
		return
	}
	if fh.Size > s.images.MaxBytes() {
		s.uploadWarning(c, lang, key, images.ErrTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.uploadWarning(c, lang, key, err)
		return
	}
	defer f.Close()

	ov, err := s.images.Upload(c.Request.Context(), v.Store, key, f, fh.Size)
	if err != nil {
		s.uploadWarning(c, lang, key, err)
		return
	}
	s.refreshOpenViewer(c, v, lang)
	c.HTML(http.StatusOK, "image.html", imageView{Lang: lang, Key: key, URL: ov.URL, Alt: c.PostForm("alt")})
}

// Drops the visitor's override and answers with the default image.
func (s *Server) handleRemoveImage(c *gin.Context) {
	v := visitorFrom(c)
	lang := s.prefsFor(c, v).Language
	key := c.Param("key")
	if err := s.images.Remove(c.Request.Context(), v.Store, key); err != nil {
		if errors.Is(err, images.ErrInvalidKey) {
			c.String(http.StatusNotFound, "unknown image")
			return
		}
		s.uploadWarning(c, lang, key, err)
		return
	}
	s.refreshOpenViewer(c, v, lang)
	c.HTML(http.StatusOK, "image.html", imageView{Lang: lang, Key: key, URL: s.defaultImage(lang, key)})
}

func (s *Server) refreshOpenViewer(c *gin.Context, v *session.Visitor, lang string) {
	id := v.Viewer.ProjectID()
	if id == "" {
		return
	}
	p, err := s.catalog(lang).Project(id)
	if err != nil {
		return
	}
	v.Viewer.Refresh(catalog.ApplyOverrides([]catalog.Project{p}, s.images.Resolver(c.Request.Context(), v.Store))[0])
}

func (s *Server) uploadWarning(c *gin.Context, lang, key string, err error) {
	msg := s.tr.T(lang, "upload.failed")
	switch {
	case errors.Is(err, images.ErrTooLarge):
		msg = s.tr.T(lang, "upload.tooLarge")
	case errors.Is(err, images.ErrUnsupported):
		msg = s.tr.T(lang, "upload.unsupported")
	case errors.Is(err, kv.ErrQuotaExceeded):
		msg = s.tr.T(lang, "upload.quota")
	}
	s.log.Warn("image upload rejected", "key", key, "err", err)
	c.Header("HX-Retarget", "#upload-warning")
	c.Header("HX-Reswap", "innerHTML")
	c.HTML(http.StatusOK, "upload-warning.html", warningView{Lang: lang, Key: key, Message: msg})
}
