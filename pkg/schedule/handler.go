package schedule

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clubbrunch/brunch/internal/rest"
	log "github.com/sirupsen/logrus"
)

type StatusDTO struct {
	EventDate    string `json:"eventDate"`
	OverrideDate string `json:"overrideDate"`
	Cancelled    bool   `json:"cancelled"`
	Open         bool   `json:"registrationOpen"`
}

type schedulePage struct {
	Status      Status
	DefaultDate string
	Error       string
	Saved       bool
}

type Handler struct {
	service  Service
	renderer *rest.Renderer
}

func NewHandler(service Service, renderer *rest.Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// GetStatus returns the upcoming event as JSON.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Could not resolve event date", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statusToDTO(status)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SchedulePage(w http.ResponseWriter, r *http.Request) {
	h.renderSchedule(w, r, http.StatusOK, "", false)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderSchedule(w, r, http.StatusBadRequest, "Ungültige Eingabe.", false)
		return
	}
	overrideDate := r.PostFormValue("override_date")
	cancelled := r.PostFormValue("cancelled") != ""
	log.Debugf("Schedule update requested: override=%q cancelled=%t", overrideDate, cancelled)

	err := h.service.UpdateSchedule(r.Context(), overrideDate, cancelled)
	if errors.Is(err, ErrInvalidOverrideDate) {
		h.renderSchedule(w, r, http.StatusBadRequest, "Ungültiges Datum, bitte im Format TT.MM.JJJJ angeben.", false)
		return
	}
	if err != nil {
		log.Errorf("failed to update schedule: %v", err)
		http.Error(w, "could not update schedule", http.StatusInternalServerError)
		return
	}
	h.renderSchedule(w, r, http.StatusOK, "", true)
}

func (h *Handler) renderSchedule(w http.ResponseWriter, r *http.Request, code int, message string, saved bool) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		log.Errorf("failed to load schedule: %v", err)
		http.Error(w, "could not load schedule", http.StatusInternalServerError)
		return
	}
	h.renderer.Render(w, r, code, "admin_schedule.html", "Termin verwalten", schedulePage{
		Status:      status,
		DefaultDate: h.service.Resolver().FormatDate(h.service.RegularEventDate()),
		Error:       message,
		Saved:       saved,
	})
}

func statusToDTO(status Status) StatusDTO {
	return StatusDTO{
		EventDate:    status.EventDate,
		OverrideDate: status.OverrideDate,
		Cancelled:    status.Cancelled,
		Open:         status.Open,
	}
}
