package item

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.Add(r.Context(), r.PostFormValue("name"))
	if errors.Is(err, ErrInvalidItem) {
		http.Error(w, "invalid item name", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("failed to add item: %v", err)
		http.Error(w, "could not add item", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PostFormValue("name")); err != nil {
		log.Errorf("failed to delete item: %v", err)
		http.Error(w, "could not delete item", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
