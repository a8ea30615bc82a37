package handler

import (
	"context"
	"net/http"
	"time"

	"tle_userdb/internal/common"
)

// Pinger reports whether the database answers. nil means it is disabled.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		common.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "disabled"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		common.RespondWithJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: err.Error()})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
}
