package rateio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	"github.com/yungbote/rateio-sync-backend/internal/data/repos"
	"github.com/yungbote/rateio-sync-backend/internal/platform/apierr"
	"github.com/yungbote/rateio-sync-backend/internal/platform/ctxutil"
	"github.com/yungbote/rateio-sync-backend/internal/platform/dbctx"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
	"github.com/yungbote/rateio-sync-backend/internal/platform/sheets"
)

const auditDiffSample = 50

var tracer = otel.Tracer("github.com/yungbote/rateio-sync-backend/internal/modules/rateio")

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Hub       repos.HubLineRepo
	Overrides repos.SyncOverrideRepo
	Logs      repos.SyncLogRepo

	// Source is only consulted when the request carries no planilha rows.
	Source sheets.Reader

	Now func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{deps: deps}
}

type PreviewInput struct {
	// PlanilhaRows, when non-nil, replaces the external fetch. An empty slice is an empty
	// planilha, not a request to fetch.
	PlanilhaRows *[]any
}

type ApplyInput struct {
	UserID       uuid.UUID
	PlanilhaRows *[]any
	Options      *Options
	Selection    *Selection
}

// reconciliation is the shared state preview and apply both start from.
type reconciliation struct {
	source          []SourceRow
	sourceByKey     map[string]SourceRow
	unfiltered      []DiffItem
	filtered        []DiffItem
	suppressed      int
	statusSupported bool
	warnings        Warnings
}

func (u Usecases) Preview(ctx context.Context, in PreviewInput) (PreviewResult, error) {
	ctx, span := tracer.Start(ctx, "rateio.preview")
	defer span.End()

	rec, err := u.reconcile(ctx, in.PlanilhaRows)
	if err != nil {
		recordErr(span, err)
		return PreviewResult{}, err
	}
	summary := Summarize(rec.filtered)
	span.SetAttributes(
		attribute.Int("rateio.criar", summary.Criar),
		attribute.Int("rateio.atualizar", summary.Atualizar),
		attribute.Int("rateio.ausentes", summary.Ausentes),
		attribute.Int("rateio.suppressed", rec.suppressed),
	)
	return PreviewResult{Diffs: rec.filtered, Summary: summary, Warnings: rec.warnings}, nil
}

func (u Usecases) Apply(ctx context.Context, in ApplyInput) (ApplyResult, error) {
	ctx, span := tracer.Start(ctx, "rateio.apply")
	defer span.End()

	out, err := u.apply(ctx, in)
	if err != nil {
		recordErr(span, err)
		return ApplyResult{}, err
	}
	span.SetAttributes(
		attribute.Int("rateio.inserted", out.Inserted),
		attribute.Int("rateio.updated", out.Updated),
		attribute.Int("rateio.inactivated", out.Inactivated),
		attribute.Int("rateio.kept_active", out.KeptActive),
	)
	return out, nil
}

func (u Usecases) apply(ctx context.Context, in ApplyInput) (ApplyResult, error) {
	policy, err := resolvePolicy(in.Options)
	if err != nil {
		return ApplyResult{}, err
	}

	rec, err := u.reconcile(ctx, in.PlanilhaRows)
	if err != nil {
		return ApplyResult{}, err
	}
	if !rec.statusSupported {
		return ApplyResult{}, apierr.New(http.StatusBadRequest, "migration_required", errMigrationRequired)
	}

	plan, err := planSelection(rec.filtered, rec.unfiltered, in.Selection)
	if err != nil {
		return ApplyResult{}, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	now := u.deps.Now().UTC()

	if len(plan.manter) > 0 {
		if err := u.deps.Overrides.Upsert(dbc, buildOverrides(plan.manter, rec.sourceByKey, in.UserID, now)); err != nil {
			return ApplyResult{}, apierr.New(http.StatusInternalServerError, "override_store_failed", fmt.Errorf("save overrides: %w", err))
		}
	}
	if keys := plan.mutationKeys(); len(keys) > 0 {
		if err := u.deps.Overrides.DeleteByKeys(dbc, keys); err != nil {
			return ApplyResult{}, apierr.New(http.StatusInternalServerError, "override_store_failed", fmt.Errorf("clear overrides: %w", err))
		}
	}

	batch := buildBatch(plan, policy, in.UserID)
	var stored repos.ApplyResult
	if !batchEmpty(batch) {
		bctx, bspan := tracer.Start(ctx, "rateio.apply_batch", trace.WithAttributes(
			attribute.Int("rateio.inserts", len(batch.Inserts)),
			attribute.Int("rateio.updates", len(batch.Updates)),
			attribute.Int("rateio.inactivations", len(batch.Inactivations)),
		))
		stored, err = u.deps.Hub.ApplyBatch(dbctx.Context{Ctx: bctx}, batch)
		if err != nil {
			recordErr(bspan, err)
			bspan.End()
			return ApplyResult{}, apierr.New(http.StatusInternalServerError, "apply_failed", err)
		}
		bspan.End()
	}

	keptActive := 0
	if policy == MissingKeepActive {
		keptActive = len(plan.absents)
	}
	out := resolveCounts(batch, stored, keptActive)

	if err := u.writeAudit(dbc, in.UserID, policy, rec, plan, out, now); err != nil {
		return ApplyResult{}, apierr.New(http.StatusInternalServerError, "audit_failed", err)
	}

	u.deps.Log.With(ctxutil.LogFields(ctx)...).Info("rateio apply finished",
		"inserted", out.Inserted,
		"updated", out.Updated,
		"inactivated", out.Inactivated,
		"kept_active", out.KeptActive,
		"manter", len(plan.manter),
	)
	return out, nil
}

func (u Usecases) reconcile(ctx context.Context, planilhaRows *[]any) (reconciliation, error) {
	var rec reconciliation

	norm, err := u.loadSource(ctx, planilhaRows)
	if err != nil {
		return rec, err
	}
	if norm.Rejected() {
		return rec, apierr.WithDetails(http.StatusBadRequest, "invalid_source_rows",
			fmt.Errorf("planilha rejected: %d invalid rows, %d duplicated keys", len(norm.InvalidRows), len(norm.Duplicates)),
			map[string]any{
				"duplicates":  nonNil(norm.Duplicates),
				"invalidRows": nonNil(norm.InvalidRows),
			})
	}
	rec.source = norm.Rows
	rec.sourceByKey = indexSource(norm.Rows)
	rec.warnings = Warnings{NomesVazios: nonNil(norm.EmptyNames)}

	hubCtx, hubSpan := tracer.Start(ctx, "rateio.hub")
	lines, statusSupported, err := u.deps.Hub.ListForSync(dbctx.Context{Ctx: hubCtx})
	hubSpan.End()
	if err != nil {
		return rec, apierr.New(http.StatusInternalServerError, "hub_query_failed", fmt.Errorf("list hub lines: %w", err))
	}
	rec.statusSupported = statusSupported
	hub, skipped := HubRowsFromLines(lines)
	if skipped > 0 {
		u.deps.Log.With(ctxutil.LogFields(ctx)...).Warn("hub lines with unparseable numero skipped", "count", skipped)
	}
	if dups := duplicateHubKeys(hub); dups > 0 {
		u.deps.Log.With(ctxutil.LogFields(ctx)...).Warn("hub has duplicated numero_linha, first row wins", "count", dups)
	}

	rec.unfiltered, _ = ComputeDiff(norm.Rows, hub)

	overrides, err := u.deps.Overrides.ListByKeys(dbctx.Context{Ctx: ctx}, diffKeys(rec.unfiltered))
	if err != nil {
		return rec, apierr.New(http.StatusInternalServerError, "override_store_failed", fmt.Errorf("list overrides: %w", err))
	}
	rec.filtered, rec.suppressed = FilterOverridden(rec.unfiltered, overrides, rec.sourceByKey)
	return rec, nil
}

func (u Usecases) loadSource(ctx context.Context, planilhaRows *[]any) (NormalizeResult, error) {
	if planilhaRows != nil {
		return NormalizeRows(*planilhaRows, 1), nil
	}
	if u.deps.Source == nil {
		return NormalizeResult{}, apierr.New(http.StatusInternalServerError, "sheets_not_configured",
			&sheets.ConfigError{Msg: "no spreadsheet reader configured"})
	}

	ctx, span := tracer.Start(ctx, "rateio.source")
	defer span.End()
	data, err := u.deps.Source.Read(ctx)
	if err != nil {
		recordErr(span, err)
		return NormalizeResult{}, sourceError(err)
	}
	raw := make([]any, 0, len(data.Rows))
	for _, r := range data.Rows {
		raw = append(raw, r)
	}
	span.SetAttributes(attribute.Int("rateio.source_rows", len(raw)))
	return NormalizeRows(raw, data.StartRow), nil
}

func sourceError(err error) error {
	var cfgErr *sheets.ConfigError
	if errors.As(err, &cfgErr) {
		return apierr.New(http.StatusInternalServerError, "sheets_not_configured", err)
	}
	var upErr *sheets.UpstreamError
	if errors.As(err, &upErr) {
		status := http.StatusInternalServerError
		if upErr.Status >= 400 && upErr.Status < 500 {
			status = http.StatusBadRequest
		}
		code := "sheets_fetch_failed"
		if upErr.Op == "token exchange" {
			code = "token_exchange_failed"
		}
		return apierr.WithDetails(status, code, err, map[string]any{"upstream_status": upErr.Status})
	}
	return apierr.New(http.StatusInternalServerError, "sheets_fetch_failed", err)
}

func (u Usecases) writeAudit(dbc dbctx.Context, userID uuid.UUID, policy MissingPolicy, rec reconciliation, plan applyPlan, out ApplyResult, now time.Time) error {
	sample := rec.unfiltered
	if len(sample) > auditDiffSample {
		sample = sample[:auditDiffSample]
	}
	options, err := json.Marshal(Options{OnMissingInSheet: policy})
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]any{
		"summary":          Summarize(rec.unfiltered),
		"diffs":            sample,
		"kept_active":      out.KeptActive,
		"manter":           nonNil(plan.manter),
		"suppressed":       rec.suppressed,
		"status_supported": rec.statusSupported,
	})
	if err != nil {
		return err
	}
	return u.deps.Logs.Create(dbc, &types.SyncLog{
		UserID:           userID,
		Inserted:         out.Inserted,
		Updated:          out.Updated,
		Inactivated:      out.Inactivated,
		Options:          datatypes.JSON(options),
		ChecksumPlanilha: Checksum(rec.source),
		Payload:          datatypes.JSON(payload),
		CreatedAt:        now,
	})
}

func duplicateHubKeys(hub []HubRow) int {
	seen := make(map[string]bool, len(hub))
	dups := 0
	for _, h := range hub {
		if seen[h.NumeroLinha] {
			dups++
			continue
		}
		seen[h.NumeroLinha] = true
	}
	return dups
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
