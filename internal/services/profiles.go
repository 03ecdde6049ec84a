// Package services contient la logique métier de GlowUp: profils, points, classement et feed.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/metrics"
	model "github.com/GoodnessFx/GlowUp/internal/models"
	"github.com/GoodnessFx/GlowUp/internal/store"
	"github.com/GoodnessFx/GlowUp/internal/utils"
)

const (
	profilePrefix  = "user:"
	referralPrefix = "referral:"

	maxReferralCodeAttempts = 5
)

func profileKey(id string) string { return profilePrefix + id }

func referralKey(code string) string { return referralPrefix + code }

type referralIndex struct {
	UserID string `json:"user_id"`
}

// ProfileService gère les profils de gamification
type ProfileService struct {
	store   store.Store
	updates *updater
	now     func() time.Time
}

func NewProfileService(s store.Store, cfg config.PointsConfig) *ProfileService {
	return &ProfileService{
		store:   s,
		updates: newUpdater(s, cfg),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func profileNotFound(id string) error {
	return model.Errorf(model.ErrNotFound, "User profile %s not found", id)
}

// CreateProfile écrit un nouveau profil; échoue si l'id existe déjà
func (s *ProfileService) CreateProfile(ctx context.Context, p *model.UserProfile) error {
	if _, err := store.PutJSON(ctx, s.store, profileKey(p.ID), p, 0); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return model.Errorf(model.ErrConflict, "User profile %s already exists", p.ID)
		}
		return fmt.Errorf("create profile %s: %w", p.ID, err)
	}
	return nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	var p model.UserProfile
	if _, err := store.GetJSON(ctx, s.store, profileKey(id), &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, profileNotFound(id)
		}
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return &p, nil
}

// AwardPoints ajoute delta points pour action, incrémente le compteur associé et recalcule niveau et badge
func (s *ProfileService) AwardPoints(ctx context.Context, userID string, delta int, action model.Action) (*model.UserProfile, error) {
	if delta < 0 {
		return nil, model.Errorf(model.ErrValidation, "Points must be a non-negative integer")
	}
	if !action.Valid() {
		return nil, model.Errorf(model.ErrValidation, "Invalid action %q", action)
	}

	var levelChanged bool
	profile, err := mutateRecord(ctx, s.updates, "profile", profileKey(userID), profileNotFound(userID), func(p *model.UserProfile) error {
		if !p.CanAward(delta) {
			return model.Errorf(model.ErrValidation, "Points total would overflow")
		}
		levelChanged = p.ApplyAward(delta, action, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordAward(string(action), delta, levelChanged)
	return profile, nil
}

// ListProfiles retourne tous les profils stockés
func (s *ProfileService) ListProfiles(ctx context.Context) ([]*model.UserProfile, error) {
	entries, err := s.store.List(ctx, profilePrefix)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	profiles := make([]*model.UserProfile, 0, len(entries))
	for _, e := range entries {
		var p model.UserProfile
		if err := json.Unmarshal(e.Value, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

// ReserveReferralCode génère un code libre et l'associe à userID
func (s *ProfileService) ReserveReferralCode(ctx context.Context, userID string) (string, error) {
	for i := 0; i < maxReferralCodeAttempts; i++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}

		_, err = store.PutJSON(ctx, s.store, referralKey(code), referralIndex{UserID: userID}, 0)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return "", fmt.Errorf("reserve referral code: %w", err)
		}
	}
	return "", fmt.Errorf("no free referral code after %d attempts", maxReferralCodeAttempts)
}

// ResolveReferralCode retourne l'id du propriétaire du code
func (s *ProfileService) ResolveReferralCode(ctx context.Context, code string) (string, error) {
	if !utils.IsReferralCode(code) {
		return "", model.Errorf(model.ErrNotFound, "Referral code %q not found", code)
	}

	var idx referralIndex
	if _, err := store.GetJSON(ctx, s.store, referralKey(code), &idx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", model.Errorf(model.ErrNotFound, "Referral code %q not found", code)
		}
		return "", fmt.Errorf("resolve referral code: %w", err)
	}
	return idx.UserID, nil
}
