package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoodnessFx/GlowUp/internal/auth"
	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/handler"
	"github.com/GoodnessFx/GlowUp/internal/services"
	"github.com/GoodnessFx/GlowUp/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const basePath = "/make-server-40db5d3a"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.Default()
	cfg.Server.BasePath = basePath
	cfg.Auth.JWTSecret = "test-secret"

	s := store.NewMemoryStore()
	provider := auth.NewLocalProvider(s, cfg.Auth.JWTSecret, time.Hour).WithBcryptCost(bcrypt.MinCost)
	profiles := services.NewProfileService(s, cfg.Points)
	h := handler.New(
		services.NewUserService(provider, profiles),
		profiles,
		services.NewLeaderboardService(profiles),
		services.NewFeedService(s, cfg.Points, profiles),
		cfg.Server.BasePath,
	)

	return SetupRouter(h, provider, nil, cfg)
}

func call(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, basePath+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	rec := call(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	// signup alice
	rec = call(t, router, http.MethodPost, "/signup", "", map[string]string{
		"email": "alice@example.com", "password": "password123", "username": "alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var signup struct {
		User struct {
			ID    string `json:"id"`
			Badge string `json:"badge"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	userID := signup.User.ID
	assert.Equal(t, "Newbie", signup.User.Badge)

	// login
	rec = call(t, router, http.MethodPost, "/login", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var session auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	token := session.AccessToken

	// Sans token ou avec un token invalide: 401 et aucun changement
	rec = call(t, router, http.MethodPost, "/user/"+userID+"/points", "", map[string]interface{}{"points": 50, "action": "help"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = call(t, router, http.MethodPost, "/user/"+userID+"/points", "forged", map[string]interface{}{"points": 50, "action": "help"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	// +160 response
	rec = call(t, router, http.MethodPost, "/user/"+userID+"/points", token, map[string]interface{}{"points": 160, "action": "response"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.EqualValues(t, 160, profile["points"])
	assert.EqualValues(t, 2, profile["level"])
	assert.Equal(t, "Explorer", profile["badge"])
	assert.EqualValues(t, 1, profile["responses_given"])

	rec = call(t, router, http.MethodGet, "/user/"+userID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.EqualValues(t, 160, profile["points"])

	rec = call(t, router, http.MethodGet, "/user/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Parrainage et wallet
	rec = call(t, router, http.MethodGet, "/user/"+userID+"/referrals", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total_earnings_cents":0`)
	rec = call(t, router, http.MethodGet, "/user/"+userID+"/referrals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = call(t, router, http.MethodPost, "/user/"+userID+"/wallet/transfer", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodGet, "/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, router, http.MethodGet, "/requests", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, router, http.MethodPost, "/requests", token, map[string]interface{}{
		"title": "Skincare routine", "description": "Oily skin", "category": "skincare",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRouter_NotFoundAndPrefix(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "routes live under the base path")

	rec = call(t, router, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, basePath+"/signup", nil)
	req.Header.Set("Origin", "https://glowup.app")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t)
	call(t, router, http.MethodGet, "/health", "", nil)

	rec := call(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "glowup_http_requests_total"))
}
