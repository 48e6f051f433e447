package sheets

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	oauthjwt "golang.org/x/oauth2/jwt"

	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

const (
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	ReadonlyScope   = "https://www.googleapis.com/auth/spreadsheets.readonly"

	assertionTTL = time.Hour
	cacheSkew    = time.Minute
)

type accessTokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// serviceAccountTokens runs the two-legged service account flow (RS256 assertion traded for
// a bearer token), sharing the result through the optional cache.
type serviceAccountTokens struct {
	log        *logger.Logger
	email      string
	keyPEM     []byte
	tokenURL   string
	scope      string
	httpClient *http.Client
	cache      TokenCache
	now        func() time.Time
}

func newServiceAccountTokens(log *logger.Logger, email, privateKeyPEM, tokenURL string, httpClient *http.Client, cache TokenCache) (*serviceAccountTokens, error) {
	if _, err := ParsePrivateKey(privateKeyPEM); err != nil {
		return nil, &ConfigError{Msg: "invalid service account private key: " + err.Error()}
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &serviceAccountTokens{
		log:        log,
		email:      email,
		keyPEM:     []byte(normalizePEM(privateKeyPEM)),
		tokenURL:   tokenURL,
		scope:      ReadonlyScope,
		httpClient: httpClient,
		cache:      cache,
		now:        time.Now,
	}, nil
}

// ParsePrivateKey accepts PKCS#1 or PKCS#8 PEM, including keys whose newlines were
// escaped as "\n" when stored in an env var.
func ParsePrivateKey(pemText string) (*rsa.PrivateKey, error) {
	pemText = normalizePEM(pemText)
	if pemText == "" {
		return nil, fmt.Errorf("empty key")
	}
	return jwt.ParseRSAPrivateKeyFromPEM([]byte(pemText))
}

func normalizePEM(pemText string) string {
	return strings.TrimSpace(strings.ReplaceAll(pemText, `\n`, "\n"))
}

func (s *serviceAccountTokens) cacheKey() string {
	return "sheets:token:" + s.email
}

func (s *serviceAccountTokens) AccessToken(ctx context.Context) (string, error) {
	if s.cache != nil {
		tok, ok, err := s.cache.Get(ctx, s.cacheKey())
		if err != nil {
			s.log.Warn("token cache read failed", "error", err)
		} else if ok {
			return tok, nil
		}
	}

	cfg := &oauthjwt.Config{
		Email:      s.email,
		PrivateKey: s.keyPEM,
		Scopes:     []string{s.scope},
		TokenURL:   s.tokenURL,
		Expires:    assertionTTL,
	}
	tok, err := cfg.TokenSource(context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)).Token()
	if err != nil {
		return "", exchangeError(err)
	}

	if s.cache != nil && !tok.Expiry.IsZero() {
		if ttl := tok.Expiry.Sub(s.now()) - cacheSkew; ttl > 0 {
			if err := s.cache.Set(ctx, s.cacheKey(), tok.AccessToken, ttl); err != nil {
				s.log.Warn("token cache write failed", "error", err)
			}
		}
	}
	return tok.AccessToken, nil
}

func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return &UpstreamError{Op: "token exchange", Message: err.Error()}
	}
	out := &UpstreamError{Op: "token exchange", Message: re.ErrorDescription}
	if re.Response != nil {
		out.Status = re.Response.StatusCode
	}
	if out.Message == "" {
		var body struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(re.Body, &body)
		out.Message = body.ErrorDescription
		if out.Message == "" {
			out.Message = body.Error
		}
	}
	if out.Message == "" {
		out.Message = strings.TrimSpace(string(re.Body))
	}
	return out
}
