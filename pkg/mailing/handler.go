package mailing

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clubbrunch/brunch/internal/rest"
	log "github.com/sirupsen/logrus"
)

type mailPage struct {
	Error      string
	Sent       bool
	Recipients string
	Subject    string
	Body       string
}

type Handler struct {
	service  *Service
	renderer *rest.Renderer
}

func NewHandler(service *Service, renderer *rest.Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

func (h *Handler) MailPage(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.Draft(r.Context())
	if err != nil {
		log.Errorf("failed to prepare mail: %v", err)
		http.Error(w, "could not prepare mail", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, mailPage{Subject: draft.Subject, Body: draft.Body})
}

func (h *Handler) SendMail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, mailPage{Error: "Ungültige Eingabe."})
		return
	}
	msg := Message{
		Subject: r.PostFormValue("subject"),
		Body:    r.PostFormValue("body"),
	}
	page := mailPage{Subject: msg.Subject, Body: msg.Body}

	err := h.service.Send(r.Context(), msg)
	switch {
	case err == nil:
		page.Sent = true
		page.Recipients = strings.Join(h.service.Recipients(), ", ")
		h.render(w, r, http.StatusOK, page)
	case errors.Is(err, ErrEmptyMessage):
		page.Error = "Bitte Betreff und Text eingeben."
		h.render(w, r, http.StatusBadRequest, page)
	case errors.Is(err, ErrMailDisabled), errors.Is(err, ErrNoRecipients):
		page.Error = "Der Mailversand ist nicht eingerichtet."
		h.render(w, r, http.StatusServiceUnavailable, page)
	default:
		log.Errorf("failed to send mail: %v", err)
		page.Error = "Die Rundmail konnte nicht verschickt werden."
		h.render(w, r, http.StatusBadGateway, page)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, code int, page mailPage) {
	h.renderer.Render(w, r, code, "admin_mail.html", "Rundmail", page)
}
