package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GoodnessFx/GlowUp/internal/logger"
	"github.com/GoodnessFx/GlowUp/internal/metrics"
	model "github.com/GoodnessFx/GlowUp/internal/models"
	"github.com/GoodnessFx/GlowUp/internal/store"
)

const referralLedgerPrefix = "referrals:"

func referralLedgerKey(referrerID, refereeID string) string {
	return referralLedgerPrefix + referrerID + ":" + refereeID
}

// RecordReferral inscrit le filleul au registre du parrain puis crédite points et gains.
// Une entrée déjà présente n'est pas recréditée.
func (s *ProfileService) RecordReferral(ctx context.Context, referrerID string, referee *model.UserProfile) error {
	if referrerID == "" || referrerID == referee.ID {
		return model.Errorf(model.ErrValidation, "Invalid referrer")
	}

	now := s.now()
	entry := model.ReferralEntry{
		ReferrerID:      referrerID,
		RefereeID:       referee.ID,
		RefereeUsername: referee.Username,
		JoinedAt:        referee.CreatedAt,
		RewardCents:     model.ReferralRewardCents,
	}

	key := referralLedgerKey(referrerID, referee.ID)
	if _, err := store.PutJSON(ctx, s.store, key, entry, 0); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			logger.Debug("referral %s already recorded", key)
			return nil
		}
		return fmt.Errorf("record referral %s: %w", key, err)
	}

	points := model.ActionReferral.Points()
	var levelChanged bool
	_, err := mutateRecord(ctx, s.updates, "profile", profileKey(referrerID), profileNotFound(referrerID), func(p *model.UserProfile) error {
		if !p.CanAward(points) {
			return model.Errorf(model.ErrValidation, "Points total would overflow")
		}
		if err := p.CreditReferralEarnings(entry.RewardCents, now); err != nil {
			return err
		}
		levelChanged = p.ApplyAward(points, model.ActionReferral, now)
		return nil
	})
	if err != nil {
		// L'entrée reste au registre; le crédit n'est pas rejoué
		return fmt.Errorf("credit referrer %s: %w", referrerID, err)
	}

	metrics.RecordAward(string(model.ActionReferral), points, levelChanged)
	return nil
}

// ListReferrals retourne les filleuls de userID, triés par clé, avec le total des gains
func (s *ProfileService) ListReferrals(ctx context.Context, userID string) (*model.ReferralSummary, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.List(ctx, referralLedgerPrefix+userID+":")
	if err != nil {
		return nil, fmt.Errorf("list referrals for %s: %w", userID, err)
	}

	summary := &model.ReferralSummary{
		UserID:          userID,
		Referrals:       make([]model.ReferralEntry, 0, len(entries)),
		PendingEarnings: profile.ReferralEarnings,
		WalletBalance:   profile.WalletBalance,
	}
	for _, e := range entries {
		var r model.ReferralEntry
		if err := json.Unmarshal(e.Value, &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		summary.Referrals = append(summary.Referrals, r)
		summary.TotalEarnings += r.RewardCents
	}
	summary.Count = len(summary.Referrals)
	return summary, nil
}

// TransferEarnings déplace les gains de parrainage non transférés vers le wallet
func (s *ProfileService) TransferEarnings(ctx context.Context, userID string) (*model.WalletTransfer, error) {
	var moved int
	profile, err := mutateRecord(ctx, s.updates, "profile", profileKey(userID), profileNotFound(userID), func(p *model.UserProfile) error {
		amount, err := p.TransferEarnings(s.now())
		if err != nil {
			return err
		}
		moved = amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("user %s transferred %d cents to wallet", userID, moved)
	return &model.WalletTransfer{
		UserID:        userID,
		Transferred:   moved,
		WalletBalance: profile.WalletBalance,
	}, nil
}
