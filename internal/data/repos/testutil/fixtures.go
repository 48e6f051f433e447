package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
)

func SeedHubLine(tb testing.TB, ctx context.Context, tx *gorm.DB, numero, nome, status string) *types.HubLine {
	tb.Helper()
	now := time.Now().UTC()
	h := &types.HubLine{
		ID:          uuid.New(),
		Nome:        &nome,
		NumeroLinha: &numero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status != "" {
		h.Status = &status
	}
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed hub line: %v", err)
	}
	return h
}

// SeedLegacyHubLine inserts into a hub table without a status column.
func SeedLegacyHubLine(tb testing.TB, ctx context.Context, tx *gorm.DB, numero, nome string) uuid.UUID {
	tb.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO rateio_claro_linhas (id, nome, numero_linha, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id.String(), nome, numero, now, now,
	).Error; err != nil {
		tb.Fatalf("seed legacy hub line: %v", err)
	}
	return id
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, authUserID uuid.UUID, role string, modules []string, active bool) *types.Profile {
	tb.Helper()
	p := &types.Profile{
		ID:         uuid.New(),
		AuthUserID: authUserID,
		Nome:       "Operador",
		Role:       role,
		Modules:    pq.StringArray(modules),
		IsActive:   active,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}
