package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

var ErrInvalidSession = errors.New("invalid or expired session")

// Session is the identity behind a verified bearer token.
type Session struct {
	UserID uuid.UUID
	Email  string
}

type SessionVerifier interface {
	Verify(ctx context.Context, token string) (Session, error)
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type jwtSessionVerifier struct {
	secret   []byte
	audience string
}

// NewJWTSessionVerifier checks HS256 session tokens locally with the auth server's shared
// secret. audience is optional.
func NewJWTSessionVerifier(secret, audience string) SessionVerifier {
	return &jwtSessionVerifier{secret: []byte(secret), audience: strings.TrimSpace(audience)}
}

func (v *jwtSessionVerifier) Verify(ctx context.Context, token string) (Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Session{}, ErrInvalidSession
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, fmt.Errorf("%w: bad subject: %v", ErrInvalidSession, err)
	}
	return Session{UserID: userID, Email: claims.Email}, nil
}

type remoteSessionVerifier struct {
	log        *logger.Logger
	userURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteSessionVerifier asks the auth server who owns the token via
// GET {authURL}/auth/v1/user.
func NewRemoteSessionVerifier(log *logger.Logger, authURL, apiKey string, httpClient *http.Client) SessionVerifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &remoteSessionVerifier{
		log:        log.With("service", "RemoteSessionVerifier"),
		userURL:    strings.TrimRight(authURL, "/") + "/auth/v1/user",
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (v *remoteSessionVerifier) Verify(ctx context.Context, token string) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userURL, nil)
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("auth server unreachable: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Session{}, ErrInvalidSession
	case resp.StatusCode >= 300:
		return Session{}, fmt.Errorf("auth server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return Session{}, fmt.Errorf("decode auth user: %w", err)
	}
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: auth user has no id", ErrInvalidSession)
	}
	return Session{UserID: userID, Email: user.Email}, nil
}

// TokenMetadata is read from a token without verifying it, for server-side diagnosis only.
type TokenMetadata struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	Expired   bool
}

func InspectToken(token string, now time.Time) (TokenMetadata, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenMetadata{}, false
	}
	md := TokenMetadata{Subject: claims.Subject, Issuer: claims.Issuer, Audience: claims.Audience}
	if claims.ExpiresAt != nil {
		md.ExpiresAt = claims.ExpiresAt.Time
		md.Expired = now.After(md.ExpiresAt)
	}
	return md, true
}
