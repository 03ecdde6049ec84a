package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	model "github.com/GoodnessFx/GlowUp/internal/models"
)

// maxBodyBytes borne la taille des corps JSON acceptés
const maxBodyBytes = 1 << 20

// DecodeJSON décode le corps de la requête; un corps trop gros donne ErrTooLarge, toute autre erreur une erreur de validation
func DecodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Errorf(model.ErrValidation, "Request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.Errorf(model.ErrTooLarge, "Request body must not exceed %d bytes", tooLarge.Limit)
		}
		return model.Errorf(model.ErrValidation, "Invalid request body: %v", err)
	}
	return nil
}

// BearerToken extrait le token du header Authorization
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", model.Errorf(model.ErrUnauthorized, "Missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", model.Errorf(model.ErrUnauthorized, "Invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// QueryInt lit un paramètre entier, borné à [1, max], avec une valeur par défaut
func QueryInt(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, model.Errorf(model.ErrValidation, "Invalid %s parameter", name)
	}
	if n > max {
		n = max
	}
	return n, nil
}
