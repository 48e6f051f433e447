package rateio

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/rateio-sync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	"github.com/yungbote/rateio-sync-backend/internal/platform/dbctx"
)

func TestSyncOverrideRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewSyncOverrideRepo(db, testutil.Logger(t))

	user := uuid.New()
	if err := repo.Upsert(dbc, []*types.SyncOverride{
		{NumeroLinha: "85999990000", PlanilhaHash: "ABSENT", UpdatedAt: time.Now().UTC(), UserID: user},
		{NumeroLinha: "85999991111", PlanilhaHash: "PRESENT:bruno", UpdatedAt: time.Now().UTC(), UserID: user},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Upserting the same key refreshes the hash instead of adding a row.
	if err := repo.Upsert(dbc, []*types.SyncOverride{
		{NumeroLinha: "85999990000", PlanilhaHash: "PRESENT:ana", UpdatedAt: time.Now().UTC(), UserID: user},
	}); err != nil {
		t.Fatalf("Upsert (refresh): %v", err)
	}

	got, err := repo.ListByKeys(dbc, []string{"85999990000", "85999991111", "85999992222"})
	if err != nil {
		t.Fatalf("ListByKeys: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(got))
	}
	for _, o := range got {
		if o.NumeroLinha == "85999990000" && o.PlanilhaHash != "PRESENT:ana" {
			t.Fatalf("expected refreshed hash, got %q", o.PlanilhaHash)
		}
	}

	if err := repo.DeleteByKeys(dbc, []string{"85999990000"}); err != nil {
		t.Fatalf("DeleteByKeys: %v", err)
	}
	got, err = repo.ListByKeys(dbc, []string{"85999990000", "85999991111"})
	if err != nil {
		t.Fatalf("ListByKeys (after delete): %v", err)
	}
	if len(got) != 1 || got[0].NumeroLinha != "85999991111" {
		t.Fatalf("unexpected overrides after delete: %+v", got)
	}

	empty, err := repo.ListByKeys(dbc, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("ListByKeys(nil): %v %v", empty, err)
	}
}
