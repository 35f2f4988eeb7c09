package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthDTO struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dto := healthDTO{Status: "ok", Database: "ok"}
	if err := h.db.Ping(ctx); err != nil {
		log.Warnf("health check: database unreachable: %v", err)
		status = http.StatusServiceUnavailable
		dto = healthDTO{Status: "degraded", Database: err.Error()}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		log.Debugf("failed to write health response: %v", err)
	}
}
