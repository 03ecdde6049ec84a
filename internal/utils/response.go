package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GoodnessFx/GlowUp/internal/logger"
	model "github.com/GoodnessFx/GlowUp/internal/models"
)

// ErrorResponse est le corps de toutes les réponses d'erreur
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string      `json:"message"`
	User    interface{} `json:"user,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response: %v", err)
	}
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// ErrorFrom choisit le status à partir de l'erreur sentinelle.
// Les erreurs inconnues sont loggées et renvoyées comme 500 générique.
func ErrorFrom(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("%v", err)
		Error(w, status, "Internal server error")
		return
	}

	msg := err.Error()
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		msg = domainErr.Message
	}
	Error(w, status, msg)
}

// StatusFor retourne le status HTTP associé à une erreur
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
