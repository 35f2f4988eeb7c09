package roster

import (
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	roster, pdf, err := h.service.PDF(r.Context())
	if err != nil {
		log.Errorf("failed to create roster: %v", err)
		http.Error(w, "could not create roster", http.StatusInternalServerError)
		return
	}

	filename := "teilnehmerliste_" + strings.ReplaceAll(roster.EventDate, ".", "-") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Debugf("failed to write roster: %v", err)
	}
}
