package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/session"
	"github.com/Zachkp/folio/internal/viewer"
)

// renderViewer answers with the current viewer fragment.
func (s *Server) renderViewer(c *gin.Context, v *session.Visitor) {
	lang := s.prefsFor(c, v).Language
	c.HTML(http.StatusOK, "viewer.html", s.viewerView(v, lang))
}

// viewerAction wraps an operation that needs no input.
func (s *Server) viewerAction(fn func(*viewer.Viewer)) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := visitorFrom(c)
		fn(v.Viewer)
		s.renderViewer(c, v)
	}
}

// Viewer fragment, re-fetched after an image-updated event.
func (s *Server) handleViewer(c *gin.Context) {
	v := visitorFrom(c)
	if id := v.Viewer.ProjectID(); id != "" {
		lang := s.prefsFor(c, v).Language
		if p, err := s.catalog(lang).Project(id); err == nil {
			v.Viewer.Refresh(catalog.ApplyOverrides([]catalog.Project{p}, s.images.Resolver(c.Request.Context(), v.Store))[0])
		}
	}
	s.renderViewer(c, v)
}

func (s *Server) handleOpenProject(c *gin.Context) {
	v := visitorFrom(c)
	lang := s.prefsFor(c, v).Language
	p, err := s.catalog(lang).Project(c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.String(status, "project not found")
		return
	}
	v.Viewer.Open(catalog.ApplyOverrides([]catalog.Project{p}, s.images.Resolver(c.Request.Context(), v.Store))[0])
	s.renderViewer(c, v)
}

func (s *Server) handleGoto(c *gin.Context) {
	v := visitorFrom(c)
	i, err := strconv.Atoi(c.PostForm("index"))
	if err == nil {
		v.Viewer.Goto(i)
	}
	s.renderViewer(c, v)
}

func (s *Server) handleZoom(c *gin.Context) {
	v := visitorFrom(c)
	switch c.PostForm("op") {
	case "in":
		v.Viewer.ZoomIn()
	case "out":
		v.Viewer.ZoomOut()
	case "reset":
		v.Viewer.ResetZoom()
	case "toggle":
		v.Viewer.DoubleClick()
	default:
		c.String(http.StatusBadRequest, "unknown zoom op")
		return
	}
	s.renderViewer(c, v)
}

// maxCoord bounds pointer coordinates; no screen is this large.
const maxCoord = 1e6

// pointer reads a finite, bounded point from the named form fields.
func pointer(c *gin.Context, xField, yField string) (viewer.Point, bool) {
	x, errX := strconv.ParseFloat(c.PostForm(xField), 64)
	y, errY := strconv.ParseFloat(c.PostForm(yField), 64)
	if errX != nil || errY != nil || !validCoord(x) || !validCoord(y) {
		return viewer.Point{}, false
	}
	return viewer.Point{X: x, Y: y}, true
}

func validCoord(f float64) bool { return !math.IsNaN(f) && math.Abs(f) <= maxCoord }

// Pointer drags while zoomed. Moves answer 204 so the browser applies the
// transform locally and only the final state is re-rendered.
func (s *Server) handleDrag(c *gin.Context) {
	v := visitorFrom(c)
	phase := c.PostForm("phase")
	if phase == "end" {
		v.Viewer.DragEnd()
		s.renderViewer(c, v)
		return
	}
	p, ok := pointer(c, "x", "y")
	if !ok {
		c.String(http.StatusBadRequest, "bad pointer")
		return
	}
	switch phase {
	case "start":
		v.Viewer.DragStart(p)
	case "move":
		v.Viewer.DragMove(p)
		c.Status(http.StatusNoContent)
		return
	default:
		c.String(http.StatusBadRequest, "unknown drag phase")
		return
	}
	s.renderViewer(c, v)
}

// A finished touch on the carousel. The page sends the start point and, if
// the finger moved, the last point; both are replayed in order.
func (s *Server) handleTouch(c *gin.Context) {
	v := visitorFrom(c)
	start, ok := pointer(c, "sx", "sy")
	if !ok {
		c.String(http.StatusBadRequest, "bad touch start")
		return
	}
	var moves []viewer.Point
	if c.PostForm("ex") != "" || c.PostForm("ey") != "" {
		end, ok := pointer(c, "ex", "ey")
		if !ok {
			c.String(http.StatusBadRequest, "bad touch end")
			return
		}
		moves = append(moves, end)
	}
	swipe := v.Viewer.Touch(start, moves...)
	c.Header("X-Swipe", swipe.String())
	s.renderViewer(c, v)
}

// Key presses forwarded from the page. Unhandled keys answer 204 so the
// browser keeps its default behavior.
func (s *Server) handleKey(c *gin.Context) {
	v := visitorFrom(c)
	carousel, _ := strconv.ParseBool(c.PostForm("carousel"))
	act := v.Viewer.HandleKey(c.PostForm("key"), carousel)
	if act == viewer.ActionNone {
		c.Status(http.StatusNoContent)
		return
	}
	c.Header("X-Viewer-Action", act.String())
	s.renderViewer(c, v)
}
