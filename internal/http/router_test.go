package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/rateio-sync-backend/internal/data/repos"
	"github.com/yungbote/rateio-sync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	httpH "github.com/yungbote/rateio-sync-backend/internal/http/handlers"
	rateiomod "github.com/yungbote/rateio-sync-backend/internal/modules/rateio"
	"github.com/yungbote/rateio-sync-backend/internal/services"
)

const jwtSecret = "router-test-secret-with-enough-length-123"

type fixture struct {
	db     *gorm.DB
	router *gin.Engine
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	hub, err := repos.NewHubLineRepo(db, log, "")
	if err != nil {
		t.Fatalf("NewHubLineRepo: %v", err)
	}
	uc := rateiomod.New(rateiomod.UsecasesDeps{
		DB:        db,
		Log:       log,
		Hub:       hub,
		Overrides: repos.NewSyncOverrideRepo(db, log),
		Logs:      repos.NewSyncLogRepo(db, log),
	})
	gate := services.NewAuthGate(log, services.NewJWTSessionVerifier(jwtSecret, ""), repos.NewProfileRepo(db, log), services.AuthPolicy{
		ModuleKey: rateiomod.ModuleKey,
		Roles:     []string{"admin", "financeiro"},
	})
	router := NewRouter(RouterConfig{
		Log:           log,
		RateioHandler: httpH.NewRateioHandler(log, gate, uc),
		HealthHandler: httpH.NewHealthHandler(db),
	})
	return fixture{db: db, router: router}
}

func (f fixture) user(t *testing.T, role string, active bool) string {
	t.Helper()
	id := uuid.New()
	testutil.SeedProfile(t, context.Background(), f.db, id, role, []string{rateiomod.ModuleKey}, active)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(jwtSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func (f fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) map[string]any {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status=%d want %d body=%s", rec.Code, status, rec.Body.String())
	}
	out := decode(t, rec)
	if out["ok"] != false {
		t.Fatalf("expected ok=false, got %v", out["ok"])
	}
	if msg, _ := out["error"].(string); msg == "" {
		t.Fatalf("expected error message, body=%s", rec.Body.String())
	}
	if code != "" && out["code"] != code {
		t.Fatalf("code=%v want %s", out["code"], code)
	}
	return out
}

func TestHealthcheck(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["ok"] != true || out["database"] != "ok" {
		t.Fatalf("body=%v", out)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a generated request id header")
	}
}

func TestPreflightAndMethods(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodOptions, FunctionPath+"/preview", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("OPTIONS status=%d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing allow-origin header")
	}

	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		wantError(t, f.do(t, m, FunctionPath, "", nil), http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

func TestUnknownActionIs404(t *testing.T) {
	f := newFixture(t)
	tok := f.user(t, "admin", true)

	wantError(t, f.do(t, http.MethodPost, FunctionPath, tok, map[string]any{}), http.StatusNotFound, "not_found")
	wantError(t, f.do(t, http.MethodPost, FunctionPath+"/delete", tok, map[string]any{"action": "preview"}), http.StatusNotFound, "not_found")
	wantError(t, f.do(t, http.MethodPost, FunctionPath+"?action=nope", tok, nil), http.StatusNotFound, "not_found")
}

func TestAuthFailures(t *testing.T) {
	f := newFixture(t)

	wantError(t, f.do(t, http.MethodPost, FunctionPath+"/preview", "", map[string]any{"planilhaRows": []any{}}), http.StatusUnauthorized, "unauthorized")
	wantError(t, f.do(t, http.MethodPost, FunctionPath+"/preview", "not-a-jwt", map[string]any{"planilhaRows": []any{}}), http.StatusUnauthorized, "unauthorized")
	wantError(t, f.do(t, http.MethodPost, FunctionPath+"/preview", "", "{broken"), http.StatusUnauthorized, "unauthorized")

	viewer := f.user(t, "visualizador", true)
	wantError(t, f.do(t, http.MethodPost, FunctionPath+"/preview", viewer, map[string]any{"planilhaRows": []any{}}), http.StatusForbidden, "forbidden")
}

func TestInactiveProfileIsForbiddenForEveryAction(t *testing.T) {
	f := newFixture(t)
	tok := f.user(t, "Administrador", false)

	for _, action := range []string{"preview", "apply"} {
		rec := f.do(t, http.MethodPost, FunctionPath+"/"+action, tok, map[string]any{"planilhaRows": []any{}})
		wantError(t, rec, http.StatusForbidden, "forbidden")
	}
}

func TestPreviewActionSources(t *testing.T) {
	f := newFixture(t)
	tok := f.user(t, "financeiro", true)
	rows := []any{map[string]any{"numero": "85999990000", "nome": "Ana Silva"}}

	cases := []struct {
		name  string
		path  string
		token string
		body  map[string]any
	}{
		{"path", FunctionPath + "/preview", tok, map[string]any{"planilhaRows": rows}},
		{"query", FunctionPath + "?action=preview", tok, map[string]any{"planilhaRows": rows}},
		{"body", FunctionPath, tok, map[string]any{"action": "preview", "planilhaRows": rows}},
		{"session token", FunctionPath + "/preview", "", map[string]any{"planilhaRows": rows, "sessionToken": tok}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tc.path, tc.token, tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
			var out rateiomod.PreviewResult
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(out.Diffs) != 1 || out.Diffs[0].Tipo != rateiomod.DiffCreate {
				t.Fatalf("unexpected diffs: %+v", out.Diffs)
			}
			if out.Summary != (rateiomod.Summary{Criar: 1}) {
				t.Fatalf("summary=%+v", out.Summary)
			}
		})
	}
}

func TestPreviewRejectsDuplicatesWithDetails(t *testing.T) {
	f := newFixture(t)
	tok := f.user(t, "admin", true)

	rec := f.do(t, http.MethodPost, FunctionPath+"/preview", tok, map[string]any{"planilhaRows": []any{
		[]any{"Ana", 85999990000},
		[]any{"Outra Ana", "(85) 99999-0000"},
	}})
	out := wantError(t, rec, http.StatusBadRequest, "invalid_source_rows")
	details, _ := out["details"].(map[string]any)
	dups, _ := details["duplicates"].([]any)
	if len(dups) != 1 {
		t.Fatalf("details=%v", out["details"])
	}
	first := dups[0].(map[string]any)
	if first["numero_da_linha"] != "85999990000" {
		t.Fatalf("duplicate=%v", first)
	}
	if lines, _ := first["lines"].([]any); len(lines) != 2 {
		t.Fatalf("lines=%v", first["lines"])
	}
}

func TestInvalidBodyAfterAuth(t *testing.T) {
	f := newFixture(t)
	tok := f.user(t, "admin", true)
	wantError(t, f.do(t, http.MethodPost, FunctionPath+"/preview", tok, "{broken"), http.StatusBadRequest, "invalid_body")
}

func TestApplyInactivatesAbsentLine(t *testing.T) {
	f := newFixture(t)
	tok := f.user(t, "admin", true)
	h1 := testutil.SeedHubLine(t, context.Background(), f.db, "85999990000", "Ana Silva", "active")

	rec := f.do(t, http.MethodPost, FunctionPath+"/apply", tok, map[string]any{
		"planilhaRows": []any{},
		"options":      map[string]any{"onMissingInSheet": "INACTIVATE"},
		"selection":    map[string]any{"ausentes": []string{"85999990000"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out rateiomod.ApplyResult
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != (rateiomod.ApplyResult{Inactivated: 1, Total: 1}) {
		t.Fatalf("result=%+v", out)
	}

	var got types.HubLine
	if err := f.db.First(&got, "id = ?", h1.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status == nil || *got.Status != "inactive" {
		t.Fatalf("status=%v", got.Status)
	}

	rec = f.do(t, http.MethodPost, FunctionPath+"/apply", tok, map[string]any{
		"planilhaRows": []any{},
		"selection":    map[string]any{"criar": []string{"85999990000"}},
	})
	wantError(t, rec, http.StatusBadRequest, "nothing_to_apply")
}
