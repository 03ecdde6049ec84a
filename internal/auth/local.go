package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/GoodnessFx/GlowUp/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	tokenIssuer       = "glowup"
	roleAuthenticated = "authenticated"
)

// account est l'enregistrement stocké sous account:<email>
type account struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	PasswordHash     string                 `json:"password_hash"`
	EmailConfirmedAt time.Time              `json:"email_confirmed_at"`
	CreatedAt        time.Time              `json:"created_at"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
}

func (a *account) identity() *Identity {
	confirmed := a.EmailConfirmedAt
	return &Identity{
		ID:               a.ID,
		Email:            a.Email,
		Role:             roleAuthenticated,
		EmailConfirmedAt: &confirmed,
		CreatedAt:        a.CreatedAt,
		UserMetadata:     a.UserMetadata,
	}
}

// Claims du token d'accès
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LocalProvider garde les comptes dans le store et signe des JWT HS256
type LocalProvider struct {
	store  store.Store
	secret []byte
	ttl    time.Duration
	cost   int
}

func NewLocalProvider(s store.Store, secret string, ttl time.Duration) *LocalProvider {
	return &LocalProvider{
		store:  s,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
	}
}

// WithBcryptCost change le coût bcrypt (les tests utilisent bcrypt.MinCost)
func (p *LocalProvider) WithBcryptCost(cost int) *LocalProvider {
	p.cost = cost
	return p
}

func accountKey(email string) string {
	return "account:" + normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *LocalProvider) CreateUser(ctx context.Context, u NewUser) (*Identity, error) {
	email := normalizeEmail(u.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, Rejected("Unable to validate email address: invalid format")
	}
	if len(u.Password) < minPasswordLength {
		return nil, Rejected(fmt.Sprintf("Password should be at least %d characters", minPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	acc := &account{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     string(hashed),
		EmailConfirmedAt: now,
		CreatedAt:        now,
		UserMetadata:     u.Metadata,
	}

	if _, err := store.PutJSON(ctx, p.store, accountKey(email), acc, 0); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, Rejected("A user with this email address has already been registered")
		}
		return nil, fmt.Errorf("save account: %w", err)
	}

	return acc.identity(), nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	acc, err := p.load(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := p.issue(acc)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(p.ttl.Seconds()),
		User:        acc.identity(),
	}, nil
}

func (p *LocalProvider) VerifyToken(ctx context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// Le compte doit toujours exister
	acc, err := p.load(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if acc.ID != claims.Subject {
		return nil, ErrInvalidToken
	}

	return acc.identity(), nil
}

func (p *LocalProvider) issue(acc *account) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: acc.Email,
		Role:  roleAuthenticated,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   acc.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *LocalProvider) load(ctx context.Context, email string) (*account, error) {
	var acc account
	if _, err := store.GetJSON(ctx, p.store, accountKey(email), &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}
