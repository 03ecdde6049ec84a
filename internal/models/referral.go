package model

import "time"

// ReferralRewardCents est la récompense versée au parrain pour chaque filleul inscrit ($5)
const ReferralRewardCents = 500

// ReferralEntry est une ligne du registre de parrainage, stockée sous referrals:<parrain>:<filleul>
type ReferralEntry struct {
	ReferrerID      string    `json:"referrer_id"`
	RefereeID       string    `json:"referee_id"`
	RefereeUsername string    `json:"referee_username"`
	JoinedAt        time.Time `json:"joined_at"`
	RewardCents     int       `json:"reward_cents"`
}

// ReferralSummary regroupe les filleuls d'un utilisateur et l'état de ses gains
type ReferralSummary struct {
	UserID          string          `json:"user_id"`
	Referrals       []ReferralEntry `json:"referrals"`
	Count           int             `json:"count"`
	TotalEarnings   int             `json:"total_earnings_cents"`
	PendingEarnings int             `json:"pending_earnings_cents"`
	WalletBalance   int             `json:"wallet_balance_cents"`
}

// WalletTransfer est le résultat d'un transfert des gains vers le wallet
type WalletTransfer struct {
	UserID        string `json:"user_id"`
	Transferred   int    `json:"transferred_cents"`
	WalletBalance int    `json:"wallet_balance_cents"`
}
