package api

import (
	"net/http"
	"time"

	"tle_userdb/internal/api/handler"
	"tle_userdb/internal/api/middleware"
	"tle_userdb/internal/app/service"
	"tle_userdb/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter exposes the read-only inspection API. db may be nil when the
// store is disabled.
func NewRouter(
	duelService *service.DuelService,
	vcService *service.RatedVCService,
	db handler.Pinger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Metrics)

	// Looks for "Authorization: Bearer T"; only admin routes reject a missing token.
	// Without a signing key nothing is verified and admin routes always answer 401.
	if security.TokenAuth != nil {
		r.Use(jwtauth.Verifier(security.TokenAuth))
	}

	r.Method(http.MethodGet, "/health", handler.NewHealthHandler(db))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		handler.NewDuelHandler(duelService).RegisterRoutes(v1)
		handler.NewRatedVCHandler(vcService).RegisterRoutes(v1)
	})

	return r
}
