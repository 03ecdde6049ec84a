package services

import (
	"context"
	"testing"
	"time"

	model "github.com/GoodnessFx/GlowUp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, f *fixture, authorID, category string) *model.GlowRequest {
	t.Helper()
	req, err := f.feed.CreateRequest(context.Background(), authorID, NewRequestInput{
		Title:       "Outfit for a summer wedding",
		Description: "Budget friendly ideas please",
		Category:    category,
		Tags:        []string{"Wedding", "summer", "wedding"},
	})
	require.NoError(t, err)
	return req
}

func points(t *testing.T, f *fixture, id string) *model.UserProfile {
	t.Helper()
	p, err := f.profiles.GetProfile(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestFeed_CreateRequestAwardsAuthor(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")

	req := newRequest(t, f, alice.ID, "fashion")
	assert.Equal(t, alice.ID, req.AuthorID)
	assert.Equal(t, "alice", req.AuthorUsername)
	assert.Equal(t, model.CategoryFashion, req.Category)
	assert.Equal(t, []string{"wedding", "summer"}, req.Tags)

	p := points(t, f, alice.ID)
	assert.Equal(t, 10, p.Points)
	assert.Equal(t, 1, p.RequestsPosted)
}

func TestFeed_CreateRequestValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	ctx := context.Background()

	_, err := f.feed.CreateRequest(ctx, alice.ID, NewRequestInput{Title: "x", Description: "y", Category: "cooking"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.feed.CreateRequest(ctx, alice.ID, NewRequestInput{Category: "fitness"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.feed.CreateRequest(ctx, "ghost", NewRequestInput{Title: "x", Description: "y", Category: "fitness"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFeed_ListRequests(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.feed.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first := newRequest(t, f, alice.ID, "fashion")
	second := newRequest(t, f, alice.ID, "skincare")

	all, err := f.feed.ListRequests(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	skincare, err := f.feed.ListRequests(ctx, "skincare")
	require.NoError(t, err)
	require.Len(t, skincare, 1)
	assert.Equal(t, second.ID, skincare[0].ID)

	_, err = f.feed.ListRequests(ctx, "cooking")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestFeed_ResponsesAndVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	carol := f.signup(t, "carol")

	req := newRequest(t, f, alice.ID, "fitness")

	reply, err := f.feed.AddResponse(ctx, req.ID, bob.ID, "Try linen")
	require.NoError(t, err)
	assert.Equal(t, "Newbie", reply.AuthorBadge)
	assert.Equal(t, 15, points(t, f, bob.ID).Points)

	_, err = f.feed.AddResponse(ctx, req.ID, bob.ID, "  ")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.feed.AddResponse(ctx, "missing", bob.ID, "hello")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Vote sur la demande
	voted, err := f.feed.UpvoteRequest(ctx, req.ID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Upvotes)
	_, err = f.feed.UpvoteRequest(ctx, req.ID, carol.ID)
	assert.ErrorIs(t, err, model.ErrConflict)
	_, err = f.feed.UpvoteRequest(ctx, req.ID, alice.ID)
	assert.ErrorIs(t, err, model.ErrValidation)

	a := points(t, f, alice.ID)
	assert.Equal(t, 15, a.Points)
	assert.Equal(t, 1, a.UpvotesReceived)

	// Vote sur la réponse
	r, err := f.feed.UpvoteResponse(ctx, req.ID, reply.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Upvotes)
	_, err = f.feed.UpvoteResponse(ctx, req.ID, reply.ID, alice.ID)
	assert.ErrorIs(t, err, model.ErrConflict)
	_, err = f.feed.UpvoteResponse(ctx, req.ID, reply.ID, bob.ID)
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.feed.UpvoteResponse(ctx, req.ID, "missing", carol.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.Equal(t, 20, points(t, f, bob.ID).Points)

	stored, err := f.feed.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, stored.Responses, 1)
	assert.Equal(t, 1, stored.Responses[0].Upvotes)
	assert.Equal(t, 1, stored.Upvotes)
}

func TestFeed_MarkHelpful(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")

	req := newRequest(t, f, alice.ID, "skincare")
	reply, err := f.feed.AddResponse(ctx, req.ID, bob.ID, "Use sunscreen")
	require.NoError(t, err)

	_, err = f.feed.MarkHelpful(ctx, req.ID, reply.ID, bob.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	marked, err := f.feed.MarkHelpful(ctx, req.ID, reply.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, marked.Helpful)

	_, err = f.feed.MarkHelpful(ctx, req.ID, reply.ID, alice.ID)
	assert.ErrorIs(t, err, model.ErrConflict)

	b := points(t, f, bob.ID)
	assert.Equal(t, 35, b.Points)
	assert.Equal(t, 1, b.HelpedPeople)
	assert.Equal(t, 1, b.ResponsesGiven)
}
