package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseProvider délègue les identités à Supabase Auth (GoTrue)
type SupabaseProvider struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseProvider(baseURL, serviceKey string, httpClient *http.Client) (*SupabaseProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if serviceKey == "" {
		return nil, fmt.Errorf("supabase service role key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &SupabaseProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: httpClient,
	}, nil
}

type supabaseResponse struct {
	StatusCode int
	Body       []byte
}

// message extrait le message d'erreur GoTrue, quel que soit le champ utilisé
func (r *supabaseResponse) message() string {
	var errResp struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &errResp); err == nil {
		for _, m := range []string{errResp.Msg, errResp.Message, errResp.ErrorDescription, errResp.Error} {
			if m != "" {
				return m
			}
		}
	}
	return fmt.Sprintf("status %d", r.StatusCode)
}

// CreateUser crée un utilisateur via l'API admin, email déjà confirmé
func (p *SupabaseProvider) CreateUser(ctx context.Context, u NewUser) (*Identity, error) {
	payload := map[string]interface{}{
		"email":         u.Email,
		"password":      u.Password,
		"email_confirm": true,
	}
	if u.Metadata != nil {
		payload["user_metadata"] = u.Metadata
	}

	resp, err := p.post(ctx, "/auth/v1/admin/users", payload, p.serviceKey)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("supabase error: %s", resp.message())
	case resp.StatusCode >= 400:
		return nil, Rejected(resp.message())
	}

	var identity Identity
	if err := json.Unmarshal(resp.Body, &identity); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("supabase returned a user without id")
	}
	return &identity, nil
}

func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := p.post(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	}, p.serviceKey)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("supabase error: %s", resp.message())
	case resp.StatusCode >= 400:
		return nil, ErrInvalidCredentials
	}

	var session Session
	if err := json.Unmarshal(resp.Body, &session); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &session, nil
}

func (p *SupabaseProvider) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	p.setHeaders(req, token)

	resp, err := p.do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("supabase error: %s", resp.message())
	case resp.StatusCode >= 400:
		return nil, ErrInvalidToken
	}

	var identity Identity
	if err := json.Unmarshal(resp.Body, &identity); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if identity.ID == "" {
		return nil, ErrInvalidToken
	}
	return &identity, nil
}

func (p *SupabaseProvider) post(ctx context.Context, path string, payload interface{}, bearer string) (*supabaseResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	p.setHeaders(req, bearer)
	req.Header.Set("Content-Type", "application/json")

	return p.do(req)
}

func (p *SupabaseProvider) setHeaders(req *http.Request, bearer string) {
	req.Header.Set("apikey", p.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
}

func (p *SupabaseProvider) do(req *http.Request) (*supabaseResponse, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &supabaseResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
