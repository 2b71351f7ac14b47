package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/contact"
)

// HTMX contact form endpoint - returns just the form HTML
func (s *Server) handleContactForm(c *gin.Context) {
	v := visitorFrom(c)
	lang := s.prefsFor(c, v).Language
	c.HTML(http.StatusOK, "contact.html", s.contactView(v, lang))
}

// Handle contact form submission with HTMX
func (s *Server) handleContact(c *gin.Context) {
	v := visitorFrom(c)
	lang := s.prefsFor(c, v).Language

	var msg contact.Message
	if err := c.ShouldBind(&msg); err != nil {
		view := s.contactView(v, lang)
		view.Draft = contact.Message{
			Name:    c.PostForm("name"),
			Email:   c.PostForm("email"),
			Message: c.PostForm("message"),
		}
		view.Error = s.tr.T(lang, "contact.invalid")
		c.HTML(http.StatusOK, "contact.html", view)
		return
	}

	err := v.Contact.Submit(c.Request.Context(), s.submitter, msg.Trim())
	switch {
	case errors.Is(err, contact.ErrBusy):
		c.HTML(http.StatusOK, "contact.html", s.contactView(v, lang))
	case err != nil:
		s.log.Warn("contact submission failed", "visitor", v.ID, "err", err)
		c.HTML(http.StatusOK, "contact-error.html", s.contactView(v, lang))
	default:
		s.log.Info("contact message accepted", "visitor", v.ID)
		c.HTML(http.StatusOK, "contact-success.html", s.contactView(v, lang))
	}
}

// "Send another message"
func (s *Server) handleContactReset(c *gin.Context) {
	v := visitorFrom(c)
	lang := s.prefsFor(c, v).Language
	v.Contact.Reset()
	c.HTML(http.StatusOK, "contact.html", s.contactView(v, lang))
}
