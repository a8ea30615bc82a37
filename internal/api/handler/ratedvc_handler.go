package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"tle_userdb/internal/api/middleware"
	"tle_userdb/internal/app/service"
	"tle_userdb/internal/common"
	"tle_userdb/internal/common/security"
	"tle_userdb/internal/platform/logging"
)

type RatedVCHandler struct {
	vcService *service.RatedVCService
	log       *logrus.Entry
}

func NewRatedVCHandler(vs *service.RatedVCService) *RatedVCHandler {
	return &RatedVCHandler{vcService: vs, log: logging.For("ratedvc_handler")}
}

func (h *RatedVCHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users/{userID}/vc-rating", h.currentRating)
	r.Get("/users/{userID}/vc-history", h.history)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.RequireRole(security.RoleAdmin))
		adminRouter.Delete("/admin/users/{userID}/vc-participation/last", h.undoLastParticipation)
	})
}

type vcRatingResponse struct {
	UserID int64 `json:"user_id"`
	Rating int   `json:"rating"`
}

func (h *RatedVCHandler) currentRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	rating, err := h.vcService.CurrentRating(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, vcRatingResponse{UserID: userID, Rating: rating})
}

func (h *RatedVCHandler) history(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	history, err := h.vcService.History(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, history)
}

func (h *RatedVCHandler) undoLastParticipation(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	if err := h.vcService.Undo(r.Context(), userID); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	admin, _ := middleware.OperatorFromContext(r.Context())
	h.log.WithFields(logrus.Fields{"user_id": userID, "admin": admin.Subject}).Info("Undid last rated VC participation")
	w.WriteHeader(http.StatusNoContent)
}
