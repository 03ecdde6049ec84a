package handler

import (
	"fmt"
	"net/http"

	model "github.com/GoodnessFx/GlowUp/internal/models"
	"github.com/GoodnessFx/GlowUp/internal/utils"
	"github.com/gorilla/mux"
)

// maxPointsPerUpdate borne un appel /points: la plus grosse récompense par défaut vaut 20
const maxPointsPerUpdate = 1000

type UpdatePointsRequest struct {
	Points *int   `json:"points"`
	Action string `json:"action"`
}

// GetUser retourne le profil de n'importe quel utilisateur (authentification requise, pas de contrôle de propriétaire)
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, profile)
}

// UpdatePoints ajoute des points au profil et incrémente le compteur de l'action
func (h *Handler) UpdatePoints(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req UpdatePointsRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	if req.Points == nil {
		utils.Error(w, http.StatusBadRequest, "Points are required")
		return
	}
	if *req.Points < 0 {
		utils.Error(w, http.StatusBadRequest, "Points must be a non-negative integer")
		return
	}
	if *req.Points > maxPointsPerUpdate {
		utils.Error(w, http.StatusBadRequest, fmt.Sprintf("Points must not exceed %d per update", maxPointsPerUpdate))
		return
	}

	action, err := model.ParseAction(req.Action)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	profile, err := h.profiles.AwardPoints(r.Context(), userID, *req.Points, action)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, profile)
}

// ownerOnly vérifie que l'appelant est bien userID
func ownerOnly(r *http.Request, userID, what string) error {
	caller, err := callerID(r)
	if err != nil {
		return err
	}
	if caller != userID {
		return model.Errorf(model.ErrForbidden, "You can only access your own %s", what)
	}
	return nil
}

// GetReferrals liste les filleuls et les gains de parrainage (propriétaire uniquement)
func (h *Handler) GetReferrals(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := ownerOnly(r, userID, "referrals"); err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	summary, err := h.profiles.ListReferrals(r.Context(), userID)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, summary)
}

// TransferEarnings déplace les gains de parrainage vers le wallet (propriétaire uniquement)
func (h *Handler) TransferEarnings(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := ownerOnly(r, userID, "wallet"); err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	transfer, err := h.profiles.TransferEarnings(r.Context(), userID)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, transfer)
}
