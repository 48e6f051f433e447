package rateio

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/rateio-sync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	"github.com/yungbote/rateio-sync-backend/internal/platform/dbctx"
)

func TestHubLineRepoListForSync(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	testutil.SeedHubLine(t, ctx, db, "85999990000", "Ana Silva", "active")
	testutil.SeedHubLine(t, ctx, db, "85999991111", "Bruno", "inactive")

	repo, err := NewHubLineRepo(db, testutil.Logger(t), "")
	if err != nil {
		t.Fatalf("NewHubLineRepo: %v", err)
	}
	rows, statusSupported, err := repo.ListForSync(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("ListForSync: %v", err)
	}
	if !statusSupported {
		t.Fatal("expected status support")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	inactive := 0
	for _, r := range rows {
		if r.IsInactive() {
			inactive++
		}
	}
	if inactive != 1 {
		t.Fatalf("expected 1 inactive row, got %d", inactive)
	}
}

func TestHubLineRepoListForSyncLegacySchema(t *testing.T) {
	db := testutil.LegacyDB(t)
	ctx := context.Background()
	testutil.SeedLegacyHubLine(t, ctx, db, "85999990000", "Ana Silva")

	repo, err := NewHubLineRepo(db, testutil.Logger(t), "")
	if err != nil {
		t.Fatalf("NewHubLineRepo: %v", err)
	}
	rows, statusSupported, err := repo.ListForSync(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("ListForSync: %v", err)
	}
	if statusSupported {
		t.Fatal("expected legacy schema to report no status support")
	}
	if len(rows) != 1 || rows[0].Status != nil {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestHubLineRepoApplyBatchInTx(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	toUpdate := testutil.SeedHubLine(t, ctx, db, "85999990000", "Ana", "inactive")
	toInactivate := testutil.SeedHubLine(t, ctx, db, "85999991111", "Bruno", "active")
	alreadyInactive := testutil.SeedHubLine(t, ctx, db, "85999992222", "Carla", "inactive")

	repo, err := NewHubLineRepo(db, testutil.Logger(t), "")
	if err != nil {
		t.Fatalf("NewHubLineRepo: %v", err)
	}
	owner := uuid.New()
	res, err := repo.ApplyBatch(dbctx.Context{Ctx: ctx}, ApplyBatch{
		Inserts:       []HubInsert{{Nome: "Daniel", NumeroLinha: "85999993333", UserID: owner}},
		Updates:       []HubUpdate{{ID: toUpdate.ID, Nome: "Ana Silva"}},
		Inactivations: []HubInactivation{{ID: toInactivate.ID}, {ID: alreadyInactive.ID}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if res.Inserted == nil || *res.Inserted != 1 {
		t.Fatalf("inserted: %+v", res.Inserted)
	}
	if res.Updated == nil || *res.Updated != 1 {
		t.Fatalf("updated: %+v", res.Updated)
	}
	if res.Inactivated == nil || *res.Inactivated != 1 {
		t.Fatalf("inactivated: %+v", res.Inactivated)
	}

	var got types.HubLine
	if err := db.First(&got, "id = ?", toUpdate.ID).Error; err != nil {
		t.Fatalf("load updated: %v", err)
	}
	if got.Status == nil || *got.Status != "active" || got.Nome == nil || *got.Nome != "Ana Silva" {
		t.Fatalf("unexpected updated row: %+v", got)
	}
	var created types.HubLine
	if err := db.First(&created, "numero_linha = ?", "85999993333").Error; err != nil {
		t.Fatalf("load inserted: %v", err)
	}
	if created.UserID == nil || *created.UserID != owner {
		t.Fatalf("expected owner %s, got %+v", owner, created.UserID)
	}
}

func TestNewHubLineRepoRejectsBadFunctionName(t *testing.T) {
	db := testutil.DB(t)
	if _, err := NewHubLineRepo(db, testutil.Logger(t), "apply(); drop table x"); err == nil {
		t.Fatal("expected error for unsafe function name")
	}
}

func TestIsUndefinedColumn(t *testing.T) {
	if IsUndefinedColumn(nil) {
		t.Fatal("nil is not an undefined column error")
	}
}
