package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"tle_userdb/internal/app/service"
	"tle_userdb/internal/common"
)

type DuelHandler struct {
	duelService *service.DuelService
}

func NewDuelHandler(ds *service.DuelService) *DuelHandler {
	return &DuelHandler{duelService: ds}
}

func (h *DuelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/duels/recent", h.recentDuels)                 // GET /api/v1/duels/recent?limit=10
	r.Get("/duels/ongoing", h.ongoingDuels)               // GET /api/v1/duels/ongoing
	r.Get("/duelists", h.ranklist)                        // GET /api/v1/duelists
	r.Get("/users/{userID}/duels", h.userDuels)           // GET /api/v1/users/42/duels
	r.Get("/users/{userID}/duel-stats", h.userDuelStats) // GET /api/v1/users/42/duel-stats
}

func (h *DuelHandler) recentDuels(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	duels, err := h.duelService.Recent(r.Context(), limit)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, duels)
}

func (h *DuelHandler) ongoingDuels(w http.ResponseWriter, r *http.Request) {
	duels, err := h.duelService.Ongoing(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, duels)
}

func (h *DuelHandler) ranklist(w http.ResponseWriter, r *http.Request) {
	duelists, err := h.duelService.Ranklist(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, duelists)
}

func (h *DuelHandler) userDuels(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	duels, err := h.duelService.History(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, duels)
}

func (h *DuelHandler) userDuelStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	stats, err := h.duelService.Stats(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

// userIDParam parses the {userID} snowflake and answers 400 when it is malformed.
func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return userID, true
}
