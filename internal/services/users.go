package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GoodnessFx/GlowUp/internal/auth"
	"github.com/GoodnessFx/GlowUp/internal/logger"
	"github.com/GoodnessFx/GlowUp/internal/metrics"
	model "github.com/GoodnessFx/GlowUp/internal/models"
)

type SignupInput struct {
	Email        string
	Password     string
	Username     string
	ReferralCode string
}

// UserService orchestre le fournisseur d'identité et les profils
type UserService struct {
	provider auth.Provider
	profiles *ProfileService
}

func NewUserService(provider auth.Provider, profiles *ProfileService) *UserService {
	return &UserService{provider: provider, profiles: profiles}
}

// Signup crée l'identité puis le profil initial (0 point, niveau 1, Newbie)
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*model.UserProfile, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || in.Password == "" || username == "" {
		return nil, model.Errorf(model.ErrValidation, "Email, password, and username are required")
	}

	var referrerID string
	if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
		id, err := s.profiles.ResolveReferralCode(ctx, code)
		switch {
		case err == nil:
			referrerID = id
		case errors.Is(err, model.ErrNotFound):
			logger.Warning("signup %s: unknown referral code %q ignored", email, code)
		default:
			return nil, err
		}
	}

	identity, err := s.provider.CreateUser(ctx, auth.NewUser{
		Email:    email,
		Password: in.Password,
		Metadata: map[string]interface{}{"username": username},
	})
	if err != nil {
		if msg, ok := auth.IsRejected(err); ok {
			metrics.RecordSignup("rejected")
			return nil, model.Errorf(model.ErrValidation, "%s", msg)
		}
		metrics.RecordSignup("failed")
		return nil, fmt.Errorf("create identity: %w", err)
	}

	code, err := s.profiles.ReserveReferralCode(ctx, identity.ID)
	if err != nil {
		logger.Warning("signup %s: %v", identity.ID, err)
	}

	if identity.Email != "" {
		email = identity.Email
	}
	profile := model.NewUserProfile(identity.ID, username, email, code, s.profiles.now())
	profile.ReferredBy = referrerID

	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		// L'identité existe déjà chez le fournisseur: état partiel
		logger.Error("identity %s created but profile write failed: %v", identity.ID, err)
		metrics.RecordSignup("failed")
		return nil, fmt.Errorf("create profile for identity %s: %w", identity.ID, err)
	}

	if referrerID != "" && referrerID != identity.ID {
		if err := s.profiles.RecordReferral(ctx, referrerID, profile); err != nil {
			logger.Warning("referral for %s failed: %v", referrerID, err)
		}
	}

	metrics.RecordSignup("created")
	logger.Success("user %s signed up (%s)", identity.ID, username)
	return profile, nil
}

// Login échange email et mot de passe contre un token d'accès
func (s *UserService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.Errorf(model.ErrValidation, "Email and password are required")
	}

	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, model.Errorf(model.ErrUnauthorized, "Invalid login credentials")
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return session, nil
}
