package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoTrue(t *testing.T) (*SupabaseProvider, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["email_confirm"])

		if body["email"] == "taken@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":422,"msg":"A user with this email address has already been registered"}`))
			return
		}
		if body["email"] == "boom@example.com" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"database unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"uid-1","email":"alice@example.com","email_confirmed_at":"2026-01-02T03:04:05.123456Z","created_at":"2026-01-02T03:04:05.123456Z","user_metadata":{"username":"alice"}}`))
	})
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600,"user":{"id":"uid-1","email":"alice@example.com","created_at":"2026-01-02T03:04:05Z"}}`))
	})
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"uid-1","email":"alice@example.com","created_at":"2026-01-02T03:04:05Z"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p, err := NewSupabaseProvider(srv.URL+"/", "service-key", srv.Client())
	require.NoError(t, err)
	return p, srv
}

func TestNewSupabaseProvider_RequiresConfig(t *testing.T) {
	_, err := NewSupabaseProvider("", "key", nil)
	assert.Error(t, err)
	_, err = NewSupabaseProvider("http://localhost", "", nil)
	assert.Error(t, err)
}

func TestSupabaseProvider_CreateUser(t *testing.T) {
	p, _ := newGoTrue(t)
	ctx := context.Background()

	identity, err := p.CreateUser(ctx, NewUser{
		Email:    "alice@example.com",
		Password: "pw123456",
		Metadata: map[string]interface{}{"username": "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", identity.ID)
	assert.NotNil(t, identity.EmailConfirmedAt)
	assert.Equal(t, "alice", identity.UserMetadata["username"])

	_, err = p.CreateUser(ctx, NewUser{Email: "taken@example.com", Password: "pw123456"})
	msg, ok := IsRejected(err)
	assert.True(t, ok)
	assert.Equal(t, "A user with this email address has already been registered", msg)

	_, err = p.CreateUser(ctx, NewUser{Email: "boom@example.com", Password: "pw123456"})
	require.Error(t, err)
	_, ok = IsRejected(err)
	assert.False(t, ok)
}

func TestSupabaseProvider_SignInAndVerify(t *testing.T) {
	p, _ := newGoTrue(t)
	ctx := context.Background()

	session, err := p.SignIn(ctx, "alice@example.com", "good")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "uid-1", session.User.ID)

	_, err = p.SignIn(ctx, "alice@example.com", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	identity, err := p.VerifyToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", identity.ID)

	_, err = p.VerifyToken(ctx, "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = p.VerifyToken(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
