package server

import (
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/i18n"
	"github.com/Zachkp/folio/internal/images"
	"github.com/Zachkp/folio/internal/session"
	"github.com/Zachkp/folio/internal/viewer"
)

// Built-in pictures for the editable profile images.
var defaultImages = map[string]string{
	images.HomeAvatarKey:   "https://placehold.co/400x400/C3C3FF/3F51B5?text=J",
	images.AboutProfileKey: "https://placehold.co/600x800/AEAEFF/3F51B5?text=Jaakko",
}

type imageView struct {
	Lang string
	Key  string
	URL  string
	Alt  string
}

type projectCard struct {
	catalog.Project
	Cover imageView
}

type worksView struct {
	Lang       string
	Filter     string
	Categories []string
	Projects   []projectCard
}

type slideView struct {
	Index   int
	Caption string
	Current bool
}

type viewerView struct {
	viewer.Snapshot
	Lang      string
	Image     imageView
	Slides    []slideView
	ShareURL  string
	Transform template.CSS
}

type contactView struct {
	Lang   string
	Status string
	Draft  contact.Message
	Error  string
}

type warningView struct {
	Lang    string
	Key     string
	Message string
}

type pageView struct {
	Lang      string
	Theme     string
	Languages []string
	Sections  []string
	Catalog   *catalog.Catalog
	Avatar    imageView
	Profile   imageView
	Works     worksView
	Viewer    viewerView
	Contact   contactView
	Revealed  map[string]bool
	MaxUpload string
	Year      int
}

// projects returns the catalog for lang with the visitor's image overrides applied.
func (s *Server) projects(c *gin.Context, v *session.Visitor, lang string) []catalog.Project {
	cat := s.catalog(lang)
	return catalog.ApplyOverrides(cat.Projects, s.images.Resolver(c.Request.Context(), v.Store))
}

func (s *Server) catalog(lang string) *catalog.Catalog {
	if cat, ok := s.catalogs[lang]; ok {
		return cat
	}
	return s.catalogs[i18n.Default]
}

func (s *Server) worksView(c *gin.Context, v *session.Visitor, lang string) worksView {
	all := s.projects(c, v, lang)
	filter := v.Filter()
	w := worksView{Lang: lang, Filter: filter, Categories: catalog.Categories(all)}
	for _, p := range catalog.Filter(all, filter) {
		w.Projects = append(w.Projects, projectCard{
			Project: p,
			Cover:   imageView{Lang: lang, Key: images.CoverKey(p.ID), URL: p.CoverImage, Alt: p.Title},
		})
	}
	return w
}

func (s *Server) viewerView(v *session.Visitor, lang string) viewerView {
	snap := v.Viewer.Snapshot()
	vv := viewerView{Snapshot: snap, Lang: lang}
	if !snap.Open {
		return vv
	}
	vv.ShareURL = "/#works?project=" + url.QueryEscape(snap.Project.ID)
	vv.Transform = template.CSS(fmt.Sprintf("translate(%.0fpx, %.0fpx) scale(%g)", snap.Offset.X, snap.Offset.Y, snap.Scale))
	if snap.Empty {
		return vv
	}
	vv.Image = imageView{
		Lang: lang,
		Key:  images.SlideKey(snap.Project.ID, snap.Index),
		URL:  snap.Image.URL,
		Alt:  snap.Image.Caption,
	}
	for i, img := range snap.Project.Images {
		vv.Slides = append(vv.Slides, slideView{Index: i, Caption: img.Caption, Current: i == snap.Index})
	}
	return vv
}

func (s *Server) contactView(v *session.Visitor, lang string) contactView {
	cv := contactView{Lang: lang, Status: v.Contact.Status().String(), Draft: v.Contact.Draft()}
	if v.Contact.Status() == contact.Failed {
		cv.Error = s.tr.T(lang, "contact.failed")
	}
	return cv
}

func (s *Server) profileImage(c *gin.Context, v *session.Visitor, lang, key, alt string) imageView {
	return imageView{
		Lang: lang,
		Key:  key,
		URL:  s.images.Resolve(c.Request.Context(), v.Store, key, defaultImages[key]),
		Alt:  alt,
	}
}

func (s *Server) pageView(c *gin.Context, v *session.Visitor) pageView {
	p := s.prefsFor(c, v)
	return pageView{
		Lang:      p.Language,
		Theme:     p.Theme,
		Languages: i18n.Supported(),
		Sections:  Sections,
		Catalog:   s.catalog(p.Language),
		Avatar:    s.profileImage(c, v, p.Language, images.HomeAvatarKey, "Jaakko"),
		Profile:   s.profileImage(c, v, p.Language, images.AboutProfileKey, "Jaakko"),
		Works:     s.worksView(c, v, p.Language),
		Viewer:    s.viewerView(v, p.Language),
		Contact:   s.contactView(v, p.Language),
		Revealed:  v.RevealedSet(),
		MaxUpload: humanize.IBytes(uint64(s.images.MaxBytes())),
		Year:      time.Now().Year(),
	}
}

// defaultImage is the catalog picture behind an override key.
func (s *Server) defaultImage(lang, key string) string {
	if u, ok := defaultImages[key]; ok {
		return u
	}
	target, ok := images.ParseKey(key)
	if !ok {
		return ""
	}
	p, err := s.catalog(lang).Project(target.ProjectID)
	if err != nil {
		return ""
	}
	if target.Slide < 0 {
		return p.CoverImage
	}
	if target.Slide < len(p.Images) {
		return p.Images[target.Slide].URL
	}
	return ""
}
