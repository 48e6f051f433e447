package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yungbote/rateio-sync-backend/internal/data/repos"
	"github.com/yungbote/rateio-sync-backend/internal/platform/apierr"
	"github.com/yungbote/rateio-sync-backend/internal/platform/ctxutil"
	"github.com/yungbote/rateio-sync-backend/internal/platform/dbctx"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

var (
	errUnauthorized = errors.New("missing or invalid session")
	errForbidden    = errors.New("forbidden")
)

type AuthPolicy struct {
	ModuleKey string
	// Roles are canonical role names (see NormalizeRole).
	Roles []string
}

// AuthGate turns a bearer token into request data, or refuses the caller. It runs before any
// planilha or hub work.
type AuthGate interface {
	Authorize(ctx context.Context, token string) (*ctxutil.RequestData, error)
}

type authGate struct {
	log      *logger.Logger
	sessions SessionVerifier
	profiles repos.ProfileRepo
	policy   AuthPolicy
	roles    map[string]bool
	now      func() time.Time
}

func NewAuthGate(log *logger.Logger, sessions SessionVerifier, profiles repos.ProfileRepo, policy AuthPolicy) AuthGate {
	roles := map[string]bool{}
	for _, r := range policy.Roles {
		roles[NormalizeRole(r)] = true
	}
	return &authGate{
		log:      log.With("service", "AuthGate"),
		sessions: sessions,
		profiles: profiles,
		policy:   policy,
		roles:    roles,
		now:      time.Now,
	}
}

func (g *authGate) Authorize(ctx context.Context, token string) (*ctxutil.RequestData, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", errUnauthorized)
	}

	sess, err := g.sessions.Verify(ctx, token)
	if err != nil {
		fields := []interface{}{"error", err}
		if md, ok := InspectToken(token, g.now()); ok {
			fields = append(fields, "exp", md.ExpiresAt, "expired", md.Expired, "aud", md.Audience, "iss", md.Issuer)
		}
		g.log.Warn("session rejected", fields...)
		if errors.Is(err, ErrInvalidSession) {
			return nil, apierr.New(http.StatusUnauthorized, "unauthorized", errUnauthorized)
		}
		return nil, apierr.New(http.StatusInternalServerError, "auth_unavailable", err)
	}

	profile, err := g.profiles.GetByAuthUserID(dbctx.Context{Ctx: ctx}, sess.UserID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "profile_lookup_failed", fmt.Errorf("load profile: %w", err))
	}
	if profile == nil {
		g.log.Warn("caller has no profile", "user_id", sess.UserID)
		return nil, apierr.New(http.StatusForbidden, "forbidden", errForbidden)
	}

	role := NormalizeRole(profile.Role)
	if !profile.IsActive || !profile.HasModule(g.policy.ModuleKey) || !g.roles[role] {
		g.log.Warn("caller not entitled",
			"user_id", sess.UserID,
			"active", profile.IsActive,
			"role", role,
		)
		return nil, apierr.New(http.StatusForbidden, "forbidden", errForbidden)
	}

	return &ctxutil.RequestData{UserID: sess.UserID, ProfileID: profile.ID, Role: role}, nil
}

var roleAliases = map[string]string{
	"administrador": "admin",
}

var stripRoleMarks = runes.Remove(runes.In(unicode.Mn))

// NormalizeRole folds accents and case and maps known aliases onto canonical names.
func NormalizeRole(role string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripRoleMarks), role)
	if err != nil {
		folded = role
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	if canon, ok := roleAliases[folded]; ok {
		return canon
	}
	return folded
}
