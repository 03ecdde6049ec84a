package services

import (
	"context"
	"testing"
	"time"

	"github.com/GoodnessFx/GlowUp/internal/auth"
	"github.com/GoodnessFx/GlowUp/internal/config"
	model "github.com/GoodnessFx/GlowUp/internal/models"
	"github.com/GoodnessFx/GlowUp/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store       store.Store
	provider    *auth.LocalProvider
	profiles    *ProfileService
	users       *UserService
	feed        *FeedService
	leaderboard *LeaderboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, store.NewMemoryStore(), config.Default().Points)
}

func newFixtureWith(t *testing.T, s store.Store, points config.PointsConfig) *fixture {
	t.Helper()

	provider := auth.NewLocalProvider(s, "test-secret", time.Hour).WithBcryptCost(bcrypt.MinCost)
	profiles := NewProfileService(s, points)
	return &fixture{
		store:       s,
		provider:    provider,
		profiles:    profiles,
		users:       NewUserService(provider, profiles),
		feed:        NewFeedService(s, points, profiles),
		leaderboard: NewLeaderboardService(profiles),
	}
}

func (f *fixture) signup(t *testing.T, username string) *model.UserProfile {
	t.Helper()
	p, err := f.users.Signup(context.Background(), SignupInput{
		Email:    username + "@example.com",
		Password: "password123",
		Username: username,
	})
	require.NoError(t, err)
	return p
}
