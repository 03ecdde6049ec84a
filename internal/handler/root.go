package handler

import (
	"net/http"

	"github.com/GoodnessFx/GlowUp/internal/utils"
)

// RootHandler affiche toutes les routes disponibles de l'API
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	route := func(method, path, description string) map[string]string {
		return map[string]string{"method": method, "path": h.basePath + path, "description": description}
	}

	routes := map[string]interface{}{
		"name":    "GlowUp API",
		"version": "1.0.0",
		"status":  "running",
		"routes": map[string]interface{}{
			"auth": []map[string]string{
				route("POST", "/signup", "Create an account and its profile"),
				route("POST", "/login", "Exchange email and password for an access token"),
			},
			"users": []map[string]string{
				route("GET", "/user/{userId}", "Get a user profile (auth)"),
				route("POST", "/user/{userId}/points", "Award points for an action (auth)"),
				route("GET", "/user/{userId}/referrals", "Referred friends and earnings (auth, owner)"),
				route("POST", "/user/{userId}/wallet/transfer", "Move referral earnings to the wallet (auth, owner)"),
			},
			"leaderboard": []map[string]string{
				route("GET", "/leaderboard", "Global ranking (params: limit)"),
				route("GET", "/leaderboard/users/{userId}", "Rank of a user"),
			},
			"requests": []map[string]string{
				route("GET", "/requests", "List advice requests (params: category)"),
				route("GET", "/requests/{id}", "Get a request with its responses"),
				route("POST", "/requests", "Post a request (auth)"),
				route("POST", "/requests/{id}/responses", "Answer a request (auth)"),
				route("POST", "/requests/{id}/upvote", "Upvote a request (auth)"),
				route("POST", "/requests/{id}/responses/{responseId}/upvote", "Upvote a response (auth)"),
				route("POST", "/requests/{id}/responses/{responseId}/helpful", "Mark a response helpful (auth, request author)"),
			},
			"health": []map[string]string{
				route("GET", "/health", "API health check"),
				route("GET", "/metrics", "Prometheus metrics"),
			},
		},
	}

	utils.Success(w, routes)
}
