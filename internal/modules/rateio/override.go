package rateio

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
)

const hashAbsent = "ABSENT"

// ContentHash pins what the planilha currently says about a key.
func ContentHash(key string, sourceByKey map[string]SourceRow) string {
	s, ok := sourceByKey[key]
	if !ok {
		return hashAbsent
	}
	return "PRESENT:" + NormalizeName(s.Nome)
}

func indexSource(rows []SourceRow) map[string]SourceRow {
	out := make(map[string]SourceRow, len(rows))
	for _, r := range rows {
		out[r.NumeroDaLinha] = r
	}
	return out
}

// FilterOverridden drops diffs whose stored override still matches the live content
// hash. Stale overrides are left in place; they simply stop matching.
func FilterOverridden(diffs []DiffItem, overrides []*types.SyncOverride, sourceByKey map[string]SourceRow) (kept []DiffItem, suppressed int) {
	byKey := make(map[string]string, len(overrides))
	for _, o := range overrides {
		if o != nil {
			byKey[o.NumeroLinha] = o.PlanilhaHash
		}
	}
	kept = make([]DiffItem, 0, len(diffs))
	for _, d := range diffs {
		if h, ok := byKey[d.NumeroDaLinha]; ok && h == ContentHash(d.NumeroDaLinha, sourceByKey) {
			suppressed++
			continue
		}
		kept = append(kept, d)
	}
	return kept, suppressed
}

func buildOverrides(keys []string, sourceByKey map[string]SourceRow, userID uuid.UUID, now time.Time) []*types.SyncOverride {
	out := make([]*types.SyncOverride, 0, len(keys))
	for _, k := range keys {
		out = append(out, &types.SyncOverride{
			NumeroLinha:  k,
			PlanilhaHash: ContentHash(k, sourceByKey),
			UpdatedAt:    now,
			UserID:       userID,
		})
	}
	return out
}

func diffKeys(diffs []DiffItem) []string {
	out := make([]string, 0, len(diffs))
	for _, d := range diffs {
		out = append(out, d.NumeroDaLinha)
	}
	return out
}
