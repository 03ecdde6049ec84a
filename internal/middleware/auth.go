package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/GoodnessFx/GlowUp/internal/auth"
	"github.com/GoodnessFx/GlowUp/internal/logger"
	"github.com/GoodnessFx/GlowUp/internal/utils"
)

type contextKey string

const identityContextKey = contextKey("identity")

// AuthMiddleware valide le bearer token auprès du fournisseur et injecte l'identité dans le contexte
func AuthMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := utils.BearerToken(r)
			if err != nil {
				utils.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			identity, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					utils.Error(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				utils.ErrorFrom(w, fmt.Errorf("verify token: %w", err))
				return
			}

			logger.Debug("authenticated %s (%s)", identity.ID, identity.Email)

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// GetIdentityFromContext récupère l'identité authentifiée
func GetIdentityFromContext(r *http.Request) (*auth.Identity, error) {
	identity, ok := r.Context().Value(identityContextKey).(*auth.Identity)
	if !ok || identity == nil {
		return nil, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// GetUserID retourne l'id de l'utilisateur authentifié, ou "" (helper)
func GetUserID(ctx context.Context) string {
	if identity, ok := ctx.Value(identityContextKey).(*auth.Identity); ok && identity != nil {
		return identity.ID
	}
	return ""
}

// WithIdentity place une identité dans le contexte (tests et appels internes)
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
