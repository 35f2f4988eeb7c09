package app

import (
	"net/http"

	"github.com/clubbrunch/brunch/internal/auth"
	"github.com/clubbrunch/brunch/internal/config"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RegisterRoutes registers all pages and endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, health *HealthHandler, cfg config.Application) {

	// Sign-up
	r.HandleFunc("/", deps.RegistrationHandler.Index).Methods("GET")
	r.HandleFunc("/", deps.RegistrationHandler.SignUp).Methods("POST")
	r.HandleFunc("/confirm_delete/{uid}", deps.RegistrationHandler.ConfirmDeletePage).Methods("GET")
	r.HandleFunc("/confirm_delete/{uid}", deps.RegistrationHandler.ConfirmDelete).Methods("POST")

	// Public schedule, readable from other sites
	public := cors.New(cors.Options{
		AllowedOrigins: cfg.Cors.AllowedOrigins,
		AllowedMethods: []string{"GET"},
	})
	r.Handle("/calendar.ics", public.Handler(http.HandlerFunc(deps.FeedHandler.GetCalendar))).Methods("GET")
	r.Handle("/api/schedule", public.Handler(http.HandlerFunc(deps.ScheduleHandler.GetStatus))).Methods("GET")
	r.HandleFunc("/health", health.Health).Methods("GET")

	// Administration
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.BasicAuth(deps.Credentials, "Brunch Verwaltung"))

	admin.HandleFunc("", deps.RegistrationAdminHandler.AdminPage).Methods("GET")
	admin.HandleFunc("/", deps.RegistrationAdminHandler.AdminPage).Methods("GET")
	admin.HandleFunc("/registration/{uid}", deps.RegistrationAdminHandler.EditPage).Methods("GET")
	admin.HandleFunc("/registration/{uid}", deps.RegistrationAdminHandler.Update).Methods("POST")
	admin.HandleFunc("/registration/{uid}/delete", deps.RegistrationAdminHandler.Delete).Methods("POST")
	admin.HandleFunc("/roster.csv", deps.RegistrationAdminHandler.ExportCsv).Methods("GET")
	admin.HandleFunc("/roster.pdf", deps.RosterHandler.DownloadPDF).Methods("GET")

	admin.HandleFunc("/schedule", deps.ScheduleHandler.SchedulePage).Methods("GET")
	admin.HandleFunc("/schedule", deps.ScheduleHandler.UpdateSchedule).Methods("POST")

	admin.HandleFunc("/mail", deps.MailingHandler.MailPage).Methods("GET")
	admin.HandleFunc("/mail", deps.MailingHandler.SendMail).Methods("POST")

	admin.HandleFunc("/item", deps.ItemHandler.AddItem).Methods("POST")
	admin.HandleFunc("/item/delete", deps.ItemHandler.DeleteItem).Methods("POST")
}
