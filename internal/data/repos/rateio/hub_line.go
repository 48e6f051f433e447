package rateio

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	domain "github.com/yungbote/rateio-sync-backend/internal/domain/rateio"
	"github.com/yungbote/rateio-sync-backend/internal/platform/dbctx"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

type HubInsert struct {
	Nome        string    `json:"nome"`
	NumeroLinha string    `json:"numero_linha"`
	UserID      uuid.UUID `json:"user_id"`
}

type HubUpdate struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
}

type HubInactivation struct {
	ID uuid.UUID `json:"id"`
}

type ApplyBatch struct {
	Inserts       []HubInsert
	Updates       []HubUpdate
	Inactivations []HubInactivation
}

// ApplyResult holds the counts reported by the store. A nil field means the store did
// not report it.
type ApplyResult struct {
	Inserted    *int
	Updated     *int
	Inactivated *int
}

type HubLineRepo interface {
	// ListForSync returns every hub row. statusSupported is false when the table has no
	// status column yet.
	ListForSync(dbc dbctx.Context) (rows []*types.HubLine, statusSupported bool, err error)
	ApplyBatch(dbc dbctx.Context, batch ApplyBatch) (ApplyResult, error)
}

type hubLineRepo struct {
	db            *gorm.DB
	log           *logger.Logger
	applyFunction string
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// NewHubLineRepo builds the hub repo. When applyFunction is non-empty every batch is sent
// to that stored procedure in a single call; otherwise the batch runs inside a GORM
// transaction.
func NewHubLineRepo(db *gorm.DB, baseLog *logger.Logger, applyFunction string) (HubLineRepo, error) {
	applyFunction = strings.TrimSpace(applyFunction)
	if applyFunction != "" && !identRe.MatchString(applyFunction) {
		return nil, fmt.Errorf("invalid apply function name %q", applyFunction)
	}
	return &hubLineRepo{
		db:            db,
		log:           baseLog.With("repo", "HubLineRepo"),
		applyFunction: applyFunction,
	}, nil
}

func (r *hubLineRepo) ListForSync(dbc dbctx.Context) ([]*types.HubLine, bool, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.HubLine
	err := txx.WithContext(dbc.Ctx).
		Model(&types.HubLine{}).
		Select("id", "nome", "numero_linha", "status").
		Order("created_at ASC").
		Find(&out).Error
	if err == nil {
		return out, true, nil
	}
	if !IsUndefinedColumn(err) {
		return nil, false, err
	}

	r.log.Warn("status column missing on hub table, reading legacy shape")
	out = nil
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.HubLine{}).
		Select("id", "nome", "numero_linha").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, false, err
	}
	return out, false, nil
}

func (r *hubLineRepo) ApplyBatch(dbc dbctx.Context, batch ApplyBatch) (ApplyResult, error) {
	if r.applyFunction != "" {
		return r.applyViaFunction(dbc, batch)
	}
	return r.applyInTx(dbc, batch)
}

func (r *hubLineRepo) applyViaFunction(dbc dbctx.Context, batch ApplyBatch) (ApplyResult, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	ins, err := marshalBatch(batch.Inserts)
	if err != nil {
		return ApplyResult{}, err
	}
	upd, err := marshalBatch(batch.Updates)
	if err != nil {
		return ApplyResult{}, err
	}
	ina, err := marshalBatch(batch.Inactivations)
	if err != nil {
		return ApplyResult{}, err
	}

	var row struct {
		Inserted    *int
		Updated     *int
		Inactivated *int
	}
	query := fmt.Sprintf("SELECT inserted, updated, inactivated FROM %s(?::jsonb, ?::jsonb, ?::jsonb)", r.applyFunction)
	if err := txx.WithContext(dbc.Ctx).Raw(query, ins, upd, ina).Scan(&row).Error; err != nil {
		return ApplyResult{}, fmt.Errorf("%s: %w", r.applyFunction, err)
	}
	return ApplyResult{Inserted: row.Inserted, Updated: row.Updated, Inactivated: row.Inactivated}, nil
}

func (r *hubLineRepo) applyInTx(dbc dbctx.Context, batch ApplyBatch) (ApplyResult, error) {
	run := func(tx *gorm.DB) (ApplyResult, error) {
		now := time.Now().UTC()
		inserted, updated, inactivated := 0, 0, 0

		if len(batch.Inserts) > 0 {
			rows := make([]*types.HubLine, 0, len(batch.Inserts))
			for _, in := range batch.Inserts {
				nome := in.Nome
				numero := in.NumeroLinha
				status := domain.StatusActive
				owner := in.UserID
				rows = append(rows, &types.HubLine{
					ID:          uuid.New(),
					Nome:        &nome,
					NumeroLinha: &numero,
					Status:      &status,
					UserID:      &owner,
					CreatedAt:   now,
					UpdatedAt:   now,
				})
			}
			res := tx.Create(&rows)
			if res.Error != nil {
				return ApplyResult{}, fmt.Errorf("insert hub lines: %w", res.Error)
			}
			inserted = int(res.RowsAffected)
		}

		for _, up := range batch.Updates {
			res := tx.Model(&types.HubLine{}).
				Where("id = ?", up.ID).
				Updates(map[string]any{
					"nome":       up.Nome,
					"status":     domain.StatusActive,
					"updated_at": now,
				})
			if res.Error != nil {
				return ApplyResult{}, fmt.Errorf("update hub line %s: %w", up.ID, res.Error)
			}
			updated += int(res.RowsAffected)
		}

		if len(batch.Inactivations) > 0 {
			ids := make([]uuid.UUID, 0, len(batch.Inactivations))
			for _, in := range batch.Inactivations {
				ids = append(ids, in.ID)
			}
			res := tx.Model(&types.HubLine{}).
				Where("id IN ? AND (status IS NULL OR status <> ?)", ids, domain.StatusInactive).
				Updates(map[string]any{
					"status":     domain.StatusInactive,
					"updated_at": now,
				})
			if res.Error != nil {
				return ApplyResult{}, fmt.Errorf("inactivate hub lines: %w", res.Error)
			}
			inactivated = int(res.RowsAffected)
		}

		return ApplyResult{Inserted: &inserted, Updated: &updated, Inactivated: &inactivated}, nil
	}

	if dbc.Tx != nil {
		return run(dbc.Tx.WithContext(dbc.Ctx))
	}
	var out ApplyResult
	err := r.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		res, err := run(tx)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return ApplyResult{}, err
	}
	return out, nil
}

func marshalBatch[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsUndefinedColumn reports whether err is the store saying a selected column does not
// exist (SQLSTATE 42703 on Postgres).
func IsUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42703"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such column") ||
		(strings.Contains(msg, "column") && strings.Contains(msg, "does not exist"))
}
