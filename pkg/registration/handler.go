package registration

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/clubbrunch/brunch/internal/rest"
	"github.com/clubbrunch/brunch/pkg/item"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type indexPage struct {
	EventDate        string
	Cancelled        bool
	Open             bool
	Error            string
	Success          string
	AvailableItems   []string
	ParticipantCount int
}

type confirmDeletePage struct {
	Name string
}

// Handler serves the member facing sign-up pages.
type Handler struct {
	service  Service
	schedule EventSchedule
	renderer *rest.Renderer
}

func NewHandler(service Service, schedule EventSchedule, renderer *rest.Renderer) *Handler {
	return &Handler{service: service, schedule: schedule, renderer: renderer}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, "", "")
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderIndex(w, r, http.StatusBadRequest, "Ungültige Eingabe.", "")
		return
	}
	signUp := SignUp{
		Name:         r.PostFormValue("name"),
		SelectedItem: r.PostFormValue("selected_item"),
		CustomItem:   r.PostFormValue("custom_item"),
		CoffeeOnly:   r.PostFormValue("for_coffee_only") != "",
	}

	registration, err := h.service.Register(r.Context(), signUp)
	switch {
	case err == nil:
		h.renderIndex(w, r, http.StatusOK, "", fmt.Sprintf("Danke %s, du bist angemeldet!", registration.Name))
	case errors.Is(err, ErrAlreadyRegistered):
		http.Redirect(w, r, "/confirm_delete/"+registration.Uid, http.StatusSeeOther)
	case errors.Is(err, ErrInvalidName):
		h.renderIndex(w, r, http.StatusBadRequest, "Bitte einen gültigen Namen eingeben.", "")
	case errors.Is(err, item.ErrInvalidItem):
		h.renderIndex(w, r, http.StatusBadRequest, "Bitte ein gültiges Mitbringsel eingeben.", "")
	case errors.Is(err, ErrEventCancelled):
		h.renderIndex(w, r, http.StatusConflict, "Der nächste Brunch fällt leider aus.", "")
	case errors.Is(err, ErrRegistrationClosed):
		h.renderIndex(w, r, http.StatusConflict, "Die Anmeldung ist geschlossen.", "")
	default:
		log.Errorf("failed to register: %v", err)
		http.Error(w, "could not register", http.StatusInternalServerError)
	}
}

func (h *Handler) ConfirmDeletePage(w http.ResponseWriter, r *http.Request) {
	registration, ok := h.registrationFromPath(w, r)
	if !ok {
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "confirm_delete.html", "Anmeldung löschen", confirmDeletePage{Name: registration.Name})
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
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
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) registrationFromPath(w http.ResponseWriter, r *http.Request) (Registration, bool) {
	registration, err := h.service.Get(r.Context(), mux.Vars(r)["uid"])
	if errors.Is(err, ErrRegistrationNotFound) {
		http.NotFound(w, r)
		return Registration{}, false
	}
	if err != nil {
		log.Errorf("failed to load registration: %v", err)
		http.Error(w, "could not load registration", http.StatusInternalServerError)
		return Registration{}, false
	}
	return registration, true
}

func (h *Handler) renderIndex(w http.ResponseWriter, r *http.Request, code int, errorMessage string, success string) {
	ctx := r.Context()
	status, err := h.schedule.Status(ctx)
	if err != nil {
		log.Errorf("failed to resolve event: %v", err)
		http.Error(w, "could not resolve event", http.StatusInternalServerError)
		return
	}
	items, err := h.service.AvailableItems(ctx)
	if err != nil {
		log.Errorf("failed to list items: %v", err)
		http.Error(w, "could not list items", http.StatusInternalServerError)
		return
	}
	count, err := h.service.Count(ctx)
	if err != nil {
		log.Errorf("failed to count registrations: %v", err)
		http.Error(w, "could not count registrations", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, code, "index.html", "Brunch Anmeldung", indexPage{
		EventDate:        status.EventDate,
		Cancelled:        status.Cancelled,
		Open:             status.Open,
		Error:            errorMessage,
		Success:          success,
		AvailableItems:   items,
		ParticipantCount: count,
	})
}
