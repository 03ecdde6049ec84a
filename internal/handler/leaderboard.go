package handler

import (
	"net/http"

	"github.com/GoodnessFx/GlowUp/internal/services"
	"github.com/GoodnessFx/GlowUp/internal/utils"
	"github.com/gorilla/mux"
)

// GetLeaderboard récupère le classement général
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.QueryInt(r, "limit", services.DefaultLeaderboardLimit, services.MaxLeaderboardLimit)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"leaderboard": entries,
		"count":       len(entries),
	})
}

// GetUserRank récupère le rang d'un utilisateur
func (h *Handler) GetUserRank(w http.ResponseWriter, r *http.Request) {
	rank, err := h.leaderboard.UserRank(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, rank)
}
