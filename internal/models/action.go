package model

import "strings"

// Action représente le type d'action qui rapporte des points
type Action string

const (
	ActionRequest  Action = "request"
	ActionResponse Action = "response"
	ActionUpvote   Action = "upvote"
	ActionHelp     Action = "help"
	ActionReferral Action = "referral"
)

// Actions liste les actions acceptées, dans l'ordre d'affichage
var Actions = []Action{ActionRequest, ActionResponse, ActionUpvote, ActionHelp, ActionReferral}

// DefaultAward points attribués par le feed pour chaque action
var DefaultAward = map[Action]int{
	ActionRequest:  10,
	ActionResponse: 15,
	ActionUpvote:   5,
	ActionHelp:     20,
	ActionReferral: 5,
}

// ParseAction valide un label d'action venant d'un client
func ParseAction(label string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(label)))
	if a.Valid() {
		return a, nil
	}
	return "", Errorf(ErrValidation, "Invalid action %q", label)
}

func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Points retourne le barème par défaut de l'action
func (a Action) Points() int {
	return DefaultAward[a]
}
