package handler

import (
	"net/http"

	"github.com/GoodnessFx/GlowUp/internal/services"
	"github.com/GoodnessFx/GlowUp/internal/utils"
)

type SignupRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Username     string `json:"username"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup crée le compte et le profil initial
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	profile, err := h.users.Signup(r.Context(), services.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		Username:     req.Username,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Created(w, utils.MessageResponse{
		Message: "User created successfully",
		User:    profile,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	session, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}

	utils.Success(w, session)
}
