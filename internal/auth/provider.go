// Package auth fournit les fournisseurs d'identité: création de compte, connexion et vérification de token.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRejected           = errors.New("rejected by identity provider")
)

// RejectedError est un refus du fournisseur (email déjà pris, mot de passe trop faible...).
// Le message est destiné au client.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Unwrap() error { return ErrRejected }

// Rejected construit un RejectedError
func Rejected(message string) error {
	return &RejectedError{Message: message}
}

// IsRejected indique si err est un refus du fournisseur et retourne son message
func IsRejected(err error) (string, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Message, true
	}
	return "", false
}

// Identity est l'utilisateur tel que connu du fournisseur d'identité
type Identity struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	Role             string                 `json:"role,omitempty"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
}

// Session est le résultat d'une connexion
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	User        *Identity `json:"user"`
}

// NewUser décrit un compte à créer; l'email est considéré comme confirmé
type NewUser struct {
	Email    string
	Password string
	Metadata map[string]interface{}
}

// Verifier résout un bearer token en identité; c'est tout ce dont le middleware a besoin
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

// Provider est le fournisseur d'identité complet
type Provider interface {
	Verifier
	CreateUser(ctx context.Context, u NewUser) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
}
