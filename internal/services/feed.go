package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/logger"
	model "github.com/GoodnessFx/GlowUp/internal/models"
	"github.com/GoodnessFx/GlowUp/internal/store"
	"github.com/google/uuid"
)

const (
	requestPrefix = "request:"

	maxTitleLength   = 120
	maxContentLength = 2000
	maxTags          = 10
)

func requestKey(id string) string { return requestPrefix + id }

func requestNotFound(id string) error {
	return model.Errorf(model.ErrNotFound, "Request %s not found", id)
}

type NewRequestInput struct {
	Title       string
	Description string
	Category    string
	Budget      string
	Tags        []string
}

// FeedService gère les demandes de conseils, leurs réponses et les votes
type FeedService struct {
	store    store.Store
	updates  *updater
	profiles *ProfileService
	now      func() time.Time
}

func NewFeedService(s store.Store, cfg config.PointsConfig, profiles *ProfileService) *FeedService {
	return &FeedService{
		store:    s,
		updates:  newUpdater(s, cfg),
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest publie une demande et crédite l'auteur
func (s *FeedService) CreateRequest(ctx context.Context, authorID string, in NewRequestInput) (*model.GlowRequest, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, model.Errorf(model.ErrValidation, "Title and description are required")
	}
	if len(title) > maxTitleLength {
		return nil, model.Errorf(model.ErrValidation, "Title must be at most %d characters", maxTitleLength)
	}
	if len(description) > maxContentLength {
		return nil, model.Errorf(model.ErrValidation, "Description must be at most %d characters", maxContentLength)
	}
	if len(in.Tags) > maxTags {
		return nil, model.Errorf(model.ErrValidation, "At most %d tags are allowed", maxTags)
	}
	category, err := model.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	author, err := s.profiles.GetProfile(ctx, authorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := &model.GlowRequest{
		ID:             uuid.NewString(),
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Title:          title,
		Description:    description,
		Category:       category,
		Budget:         strings.TrimSpace(in.Budget),
		Tags:           cleanTags(in.Tags),
		Responses:      []model.GlowReply{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := store.PutJSON(ctx, s.store, requestKey(req.ID), req, 0); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.award(ctx, author.ID, model.ActionRequest)
	return req, nil
}

func (s *FeedService) GetRequest(ctx context.Context, id string) (*model.GlowRequest, error) {
	var req model.GlowRequest
	if _, err := store.GetJSON(ctx, s.store, requestKey(id), &req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, requestNotFound(id)
		}
		return nil, fmt.Errorf("get request %s: %w", id, err)
	}
	return &req, nil
}

// ListRequests retourne les demandes, plus récentes d'abord, filtrées par catégorie si fournie
func (s *FeedService) ListRequests(ctx context.Context, category string) ([]*model.GlowRequest, error) {
	var filter model.Category
	if category != "" {
		c, err := model.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		filter = c
	}

	entries, err := s.store.List(ctx, requestPrefix)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	requests := make([]*model.GlowRequest, 0, len(entries))
	for _, e := range entries {
		var req model.GlowRequest
		if err := json.Unmarshal(e.Value, &req); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		if filter != "" && req.Category != filter {
			continue
		}
		requests = append(requests, &req)
	}

	sort.SliceStable(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		}
		return requests[i].ID < requests[j].ID
	})
	return requests, nil
}

// AddResponse ajoute une réponse à une demande et crédite le répondant
func (s *FeedService) AddResponse(ctx context.Context, requestID, authorID, content string) (*model.GlowReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, model.Errorf(model.ErrValidation, "Content is required")
	}
	if len(content) > maxContentLength {
		return nil, model.Errorf(model.ErrValidation, "Content must be at most %d characters", maxContentLength)
	}

	author, err := s.profiles.GetProfile(ctx, authorID)
	if err != nil {
		return nil, err
	}

	reply := model.GlowReply{
		ID:             uuid.NewString(),
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		AuthorBadge:    author.Badge,
		Content:        content,
		CreatedAt:      s.now(),
	}

	_, err = mutateRecord(ctx, s.updates, "request", requestKey(requestID), requestNotFound(requestID), func(req *model.GlowRequest) error {
		req.Responses = append(req.Responses, reply)
		req.UpdatedAt = reply.CreatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.award(ctx, author.ID, model.ActionResponse)
	return &reply, nil
}

// UpvoteRequest ajoute le vote de voterID sur une demande et crédite son auteur
func (s *FeedService) UpvoteRequest(ctx context.Context, requestID, voterID string) (*model.GlowRequest, error) {
	req, err := mutateRecord(ctx, s.updates, "request", requestKey(requestID), requestNotFound(requestID), func(req *model.GlowRequest) error {
		if req.AuthorID == voterID {
			return model.Errorf(model.ErrValidation, "You cannot upvote your own request")
		}
		if model.HasVoted(req.Voters, voterID) {
			return model.Errorf(model.ErrConflict, "You already upvoted this request")
		}
		req.Voters = append(req.Voters, voterID)
		req.Upvotes++
		req.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.award(ctx, req.AuthorID, model.ActionUpvote)
	return req, nil
}

// UpvoteResponse ajoute le vote de voterID sur une réponse et crédite son auteur
func (s *FeedService) UpvoteResponse(ctx context.Context, requestID, responseID, voterID string) (*model.GlowReply, error) {
	var voted model.GlowReply
	_, err := mutateRecord(ctx, s.updates, "request", requestKey(requestID), requestNotFound(requestID), func(req *model.GlowRequest) error {
		reply, ok := req.Reply(responseID)
		if !ok {
			return model.Errorf(model.ErrNotFound, "Response %s not found", responseID)
		}
		if reply.AuthorID == voterID {
			return model.Errorf(model.ErrValidation, "You cannot upvote your own response")
		}
		if model.HasVoted(reply.Voters, voterID) {
			return model.Errorf(model.ErrConflict, "You already upvoted this response")
		}
		reply.Voters = append(reply.Voters, voterID)
		reply.Upvotes++
		req.UpdatedAt = s.now()
		voted = *reply
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.award(ctx, voted.AuthorID, model.ActionUpvote)
	return &voted, nil
}

// MarkHelpful marque une réponse comme utile; seul l'auteur de la demande peut le faire
func (s *FeedService) MarkHelpful(ctx context.Context, requestID, responseID, callerID string) (*model.GlowReply, error) {
	var marked model.GlowReply
	_, err := mutateRecord(ctx, s.updates, "request", requestKey(requestID), requestNotFound(requestID), func(req *model.GlowRequest) error {
		if req.AuthorID != callerID {
			return model.Errorf(model.ErrForbidden, "Only the request author can mark a response as helpful")
		}
		reply, ok := req.Reply(responseID)
		if !ok {
			return model.Errorf(model.ErrNotFound, "Response %s not found", responseID)
		}
		if reply.AuthorID == callerID {
			return model.Errorf(model.ErrValidation, "You cannot mark your own response as helpful")
		}
		if reply.Helpful {
			return model.Errorf(model.ErrConflict, "Response already marked as helpful")
		}
		reply.Helpful = true
		req.UpdatedAt = s.now()
		marked = *reply
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.award(ctx, marked.AuthorID, model.ActionHelp)
	return &marked, nil
}

// award crédite les points par défaut de l'action; l'écriture principale est déjà faite,
// un échec est seulement loggé
func (s *FeedService) award(ctx context.Context, userID string, action model.Action) {
	if _, err := s.profiles.AwardPoints(ctx, userID, action.Points(), action); err != nil {
		logger.Error("award %s to %s: %v", action, userID, err)
	}
}

func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
