package feed

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.service.Calendar(r.Context())
	if err != nil {
		log.Errorf("failed to build calendar: %v", err)
		http.Error(w, "could not build calendar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="brunch.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		log.Debugf("failed to write calendar: %v", err)
	}
}
