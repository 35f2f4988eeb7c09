package registration

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/clubbrunch/brunch/internal/rest"
	"github.com/clubbrunch/brunch/pkg/item"
	"github.com/clubbrunch/brunch/pkg/schedule"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type adminPage struct {
	Status        schedule.Status
	Registrations []Registration
	Items         []string
}

type editPage struct {
	Error        string
	Registration Registration
}

// AdminHandler serves the registration management pages behind the admin login.
type AdminHandler struct {
	service  Service
	schedule EventSchedule
	items    item.Service
	csv      *CsvRendererImpl
	renderer *rest.Renderer
}

func NewAdminHandler(service Service, schedule EventSchedule, items item.Service, renderer *rest.Renderer) *AdminHandler {
	return &AdminHandler{
		service:  service,
		schedule: schedule,
		items:    items,
		csv:      NewCsvRenderer(),
		renderer: renderer,
	}
}

func (h *AdminHandler) AdminPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.schedule.Status(ctx)
	if err != nil {
		log.Errorf("failed to resolve event: %v", err)
		http.Error(w, "could not resolve event", http.StatusInternalServerError)
		return
	}
	registrations, err := h.service.List(ctx)
	if err != nil {
		log.Errorf("failed to list registrations: %v", err)
		http.Error(w, "could not list registrations", http.StatusInternalServerError)
		return
	}
	items, err := h.items.List(ctx)
	if err != nil {
		log.Errorf("failed to list items: %v", err)
		http.Error(w, "could not list items", http.StatusInternalServerError)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "admin.html", "Verwaltung", adminPage{
		Status:        status,
		Registrations: registrations,
		Items:         items,
	})
}

func (h *AdminHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	registration, err := h.service.Get(r.Context(), mux.Vars(r)["uid"])
	if errors.Is(err, ErrRegistrationNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Errorf("failed to load registration: %v", err)
		http.Error(w, "could not load registration", http.StatusInternalServerError)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "admin_edit.html", "Anmeldung bearbeiten", editPage{Registration: registration})
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	registration := Registration{
		Uid:        mux.Vars(r)["uid"],
		Name:       r.PostFormValue("name"),
		Item:       r.PostFormValue("item"),
		CoffeeOnly: r.PostFormValue("for_coffee_only") != "",
	}

	err := h.service.Update(r.Context(), registration)
	switch {
	case err == nil:
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	case errors.Is(err, ErrRegistrationNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrInvalidName):
		h.renderEditError(w, r, registration, "Bitte einen gültigen Namen eingeben.")
	case errors.Is(err, item.ErrInvalidItem):
		h.renderEditError(w, r, registration, "Bitte ein gültiges Mitbringsel eingeben.")
	case errors.Is(err, ErrAlreadyRegistered):
		h.renderEditError(w, r, registration, "Dieser Name ist bereits angemeldet.")
	default:
		log.Errorf("failed to update registration: %v", err)
		http.Error(w, "could not update registration", http.StatusInternalServerError)
	}
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), mux.Vars(r)["uid"])
	if errors.Is(err, ErrRegistrationNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Errorf("failed to delete registration: %v", err)
		http.Error(w, "could not delete registration", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// ExportCsv downloads the registrations of the upcoming event.
func (h *AdminHandler) ExportCsv(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.schedule.Status(ctx)
	if err != nil {
		log.Errorf("failed to resolve event: %v", err)
		http.Error(w, "could not resolve event", http.StatusInternalServerError)
		return
	}
	registrations, err := h.service.List(ctx)
	if err != nil {
		log.Errorf("failed to list registrations: %v", err)
		http.Error(w, "could not list registrations", http.StatusInternalServerError)
		return
	}
	content, err := h.csv.RenderRoster(status.EventDate, registrations)
	if err != nil {
		http.Error(w, "could not render roster", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"brunch_%s.csv\"", status.Date.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content)); err != nil {
		log.Debugf("failed to write roster: %v", err)
	}
}

func (h *AdminHandler) renderEditError(w http.ResponseWriter, r *http.Request, registration Registration, message string) {
	h.renderer.Render(w, r, http.StatusBadRequest, "admin_edit.html", "Anmeldung bearbeiten", editPage{
		Error:        message,
		Registration: registration,
	})
}
