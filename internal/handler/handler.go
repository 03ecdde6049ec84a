package handler

import (
	"net/http"

	"github.com/GoodnessFx/GlowUp/internal/middleware"
	model "github.com/GoodnessFx/GlowUp/internal/models"
	"github.com/GoodnessFx/GlowUp/internal/services"
	"github.com/GoodnessFx/GlowUp/internal/utils"
)

// Handler regroupe les dépendances des handlers HTTP
type Handler struct {
	users       *services.UserService
	profiles    *services.ProfileService
	leaderboard *services.LeaderboardService
	feed        *services.FeedService
	basePath    string
}

func New(users *services.UserService, profiles *services.ProfileService, leaderboard *services.LeaderboardService, feed *services.FeedService, basePath string) *Handler {
	return &Handler{
		users:       users,
		profiles:    profiles,
		leaderboard: leaderboard,
		feed:        feed,
		basePath:    basePath,
	}
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, map[string]string{"status": "ok"})
}

// callerID retourne l'id de l'identité authentifiée
func callerID(r *http.Request) (string, error) {
	identity, err := middleware.GetIdentityFromContext(r)
	if err != nil {
		return "", model.Errorf(model.ErrUnauthorized, "Unauthorized")
	}
	return identity.ID, nil
}
