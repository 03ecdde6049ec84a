package model

import (
	"math"
	"time"
)

// Paliers de niveau
const (
	PointsPerLevel = 150
	MaxBadgeLevel  = 10
)

// badgeTitles associe chaque niveau à son badge (index 0 inutilisé)
var badgeTitles = [MaxBadgeLevel + 1]string{
	"",
	"Newbie",
	"Explorer",
	"Helper",
	"Advisor",
	"Stylist",
	"Expert",
	"Guru",
	"Master",
	"Legend",
	"Glow Master",
}

// UserProfile est l'état de gamification d'un utilisateur, stocké sous user:<id>
type UserProfile struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Points            int       `json:"points"`
	Level             int       `json:"level"`
	Badge             string    `json:"badge"`
	PointsToNextLevel int       `json:"points_to_next_level"`
	HelpedPeople      int       `json:"helped_people"`
	ResponsesGiven    int       `json:"responses_given"`
	UpvotesReceived   int       `json:"upvotes_received"`
	RequestsPosted    int       `json:"requests_posted"`
	Referrals         int       `json:"referrals"`
	ReferralEarnings  int       `json:"referral_earnings_cents"` // non encore transférés
	WalletBalance     int       `json:"wallet_balance_cents"`
	ReferralCode      string    `json:"referral_code,omitempty"`
	ReferredBy        string    `json:"referred_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewUserProfile construit le profil initial créé au signup
func NewUserProfile(id, username, email, referralCode string, now time.Time) *UserProfile {
	return &UserProfile{
		ID:           id,
		Username:     username,
		Email:        email,
		Points:       0,
		Level:        1,
		Badge:        BadgeForLevel(1),
		ReferralCode: referralCode,
		CreatedAt:    now,
		UpdatedAt:    now,

		PointsToNextLevel: PointsPerLevel,
	}
}

// LevelForPoints calcule le niveau: floor(points / 150) + 1
func LevelForPoints(points int) int {
	if points < 0 {
		return 1
	}
	return points/PointsPerLevel + 1
}

// BadgeForLevel retourne le badge d'un niveau, plafonné au dernier palier
func BadgeForLevel(level int) string {
	if level < 1 {
		level = 1
	}
	if level > MaxBadgeLevel {
		level = MaxBadgeLevel
	}
	return badgeTitles[level]
}

// ApplyAward ajoute delta points, incrémente le compteur de l'action et recalcule niveau et badge.
// Retourne true si le niveau a changé.
func (p *UserProfile) ApplyAward(delta int, action Action, now time.Time) bool {
	p.Points += delta
	if c := p.counter(action); c != nil {
		*c++
	}

	previous := p.Level
	p.Level = LevelForPoints(p.Points)
	p.Badge = BadgeForLevel(p.Level)
	p.PointsToNextLevel = PointsPerLevel - p.Points%PointsPerLevel
	p.UpdatedAt = now

	return p.Level != previous
}

// CanAward indique si delta points peuvent être ajoutés sans dépasser math.MaxInt
func (p *UserProfile) CanAward(delta int) bool {
	return delta >= 0 && delta <= math.MaxInt-p.Points
}

// CreditReferralEarnings ajoute une récompense de parrainage aux gains non transférés
func (p *UserProfile) CreditReferralEarnings(cents int, now time.Time) error {
	if cents < 0 || cents > math.MaxInt-p.ReferralEarnings {
		return Errorf(ErrValidation, "Invalid referral reward %d", cents)
	}
	p.ReferralEarnings += cents
	p.UpdatedAt = now
	return nil
}

// TransferEarnings vide les gains de parrainage dans le wallet et retourne le montant transféré
func (p *UserProfile) TransferEarnings(now time.Time) (int, error) {
	amount := p.ReferralEarnings
	if amount <= 0 {
		return 0, Errorf(ErrValidation, "No referral earnings to transfer")
	}
	if amount > math.MaxInt-p.WalletBalance {
		return 0, Errorf(ErrValidation, "Wallet balance limit reached")
	}
	p.WalletBalance += amount
	p.ReferralEarnings = 0
	p.UpdatedAt = now
	return amount, nil
}

func (p *UserProfile) counter(action Action) *int {
	switch action {
	case ActionRequest:
		return &p.RequestsPosted
	case ActionResponse:
		return &p.ResponsesGiven
	case ActionUpvote:
		return &p.UpvotesReceived
	case ActionHelp:
		return &p.HelpedPeople
	case ActionReferral:
		return &p.Referrals
	}
	return nil
}
