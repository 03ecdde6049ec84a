package api

import (
	"net/http"

	"github.com/GoodnessFx/GlowUp/internal/auth"
	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/handler"
	"github.com/GoodnessFx/GlowUp/internal/logger"
	"github.com/GoodnessFx/GlowUp/internal/metrics"
	"github.com/GoodnessFx/GlowUp/internal/middleware"
	"github.com/GoodnessFx/GlowUp/internal/utils"
	"github.com/gorilla/mux"
)

// SetupRouter construit le routeur; limiter peut être nil quand le rate limiting est désactivé
func SetupRouter(h *handler.Handler, verifier auth.Verifier, limiter *middleware.RateLimiter, cfg *config.Config) http.Handler {
	root := mux.NewRouter()
	root.Use(middleware.LoggerMiddleware)
	if cfg.Metrics.Enabled {
		root.Use(metrics.InstrumentHandler)
	}
	root.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r := root
	if cfg.Server.BasePath != "" {
		r = root.PathPrefix(cfg.Server.BasePath).Subrouter()
	}

	authenticatedRoutes := r.NewRoute().Subrouter()
	authenticatedRoutes.Use(middleware.AuthMiddleware(verifier))

	publicRoutes := r.NewRoute().Subrouter()

	if limiter != nil {
		authenticatedRoutes.Use(limiter.Handler)
		publicRoutes.Use(limiter.Handler)
	}

	// Root - documentation de l'API
	publicRoutes.HandleFunc("/", h.RootHandler).Methods(http.MethodGet)
	publicRoutes.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	// Auth
	publicRoutes.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	publicRoutes.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	// Users
	authenticatedRoutes.HandleFunc("/user/{userId}", h.GetUser).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/user/{userId}/points", h.UpdatePoints).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/user/{userId}/referrals", h.GetReferrals).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/user/{userId}/wallet/transfer", h.TransferEarnings).Methods(http.MethodPost)

	// Leaderboard
	publicRoutes.HandleFunc("/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	publicRoutes.HandleFunc("/leaderboard/users/{userId}", h.GetUserRank).Methods(http.MethodGet)

	// Requests feed
	publicRoutes.HandleFunc("/requests", h.ListRequests).Methods(http.MethodGet)
	publicRoutes.HandleFunc("/requests/{id}", h.GetRequest).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/requests", h.CreateRequest).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/requests/{id}/responses", h.CreateResponse).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/requests/{id}/upvote", h.UpvoteRequest).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/requests/{id}/responses/{responseId}/upvote", h.UpvoteResponse).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/requests/{id}/responses/{responseId}/helpful", h.MarkHelpful).Methods(http.MethodPost)

	if cfg.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warning("404 Not Found: %s %s", r.Method, r.URL.Path)
		utils.Error(w, http.StatusNotFound, "Route not found")
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// CORS en dehors de mux: les preflight OPTIONS ne correspondent à aucune route
	return middleware.CORS(cfg.Server.CORSOrigins)(root)
}
