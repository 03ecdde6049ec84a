package services

import (
	"context"
	"math"
	"sort"

	model "github.com/GoodnessFx/GlowUp/internal/models"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 200
)

// LeaderboardService calcule le classement à partir des profils
type LeaderboardService struct {
	profiles *ProfileService
}

func NewLeaderboardService(profiles *ProfileService) *LeaderboardService {
	return &LeaderboardService{profiles: profiles}
}

// rank trie par points décroissants, puis ancienneté, puis id
func rank(profiles []*model.UserProfile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Top retourne les limit premiers du classement
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	rank(profiles)

	if len(profiles) > limit {
		profiles = profiles[:limit]
	}

	entries := make([]model.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, model.LeaderboardEntry{
			Rank:         i + 1,
			UserID:       p.ID,
			Username:     p.Username,
			Points:       p.Points,
			Level:        p.Level,
			Badge:        p.Badge,
			HelpedPeople: p.HelpedPeople,
			JoinedAt:     p.CreatedAt,
		})
	}
	return entries, nil
}

// UserRank retourne la position d'un utilisateur dans le classement
func (s *LeaderboardService) UserRank(ctx context.Context, userID string) (*model.UserRank, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	rank(profiles)

	for i, p := range profiles {
		if p.ID != userID {
			continue
		}
		total := len(profiles)
		return &model.UserRank{
			UserID:     p.ID,
			Rank:       i + 1,
			Points:     p.Points,
			TotalUsers: total,
			Percentile: math.Round(float64(i+1)/float64(total)*10000) / 100,
		}, nil
	}
	return nil, profileNotFound(userID)
}
