package model

import (
	"strings"
	"time"
)

// Category des demandes de conseils
type Category string

const (
	CategoryFashion  Category = "fashion"
	CategoryFitness  Category = "fitness"
	CategorySkincare Category = "skincare"
)

// ParseCategory valide une catégorie venant d'un client
func ParseCategory(value string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(value))); c {
	case CategoryFashion, CategoryFitness, CategorySkincare:
		return c, nil
	}
	return "", Errorf(ErrValidation, "Invalid category %q", value)
}

// GlowRequest est une demande de conseil publiée dans le feed
type GlowRequest struct {
	ID             string      `json:"id"`
	AuthorID       string      `json:"author_id"`
	AuthorUsername string      `json:"author_username"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Category       Category    `json:"category"`
	Budget         string      `json:"budget,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	Upvotes        int         `json:"upvotes"`
	Voters         []string    `json:"voters,omitempty"`
	Responses      []GlowReply `json:"responses"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// GlowReply est une réponse à une demande
type GlowReply struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	AuthorBadge    string    `json:"author_badge,omitempty"`
	Content        string    `json:"content"`
	Upvotes        int       `json:"upvotes"`
	Voters         []string  `json:"voters,omitempty"`
	Helpful        bool      `json:"helpful"`
	CreatedAt      time.Time `json:"created_at"`
}

// Reply retourne la réponse d'id donné
func (r *GlowRequest) Reply(id string) (*GlowReply, bool) {
	for i := range r.Responses {
		if r.Responses[i].ID == id {
			return &r.Responses[i], true
		}
	}
	return nil, false
}

// HasVoted vérifie si userID fait partie des votants
func HasVoted(voters []string, userID string) bool {
	for _, v := range voters {
		if v == userID {
			return true
		}
	}
	return false
}
