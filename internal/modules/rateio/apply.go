package rateio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	hubrepo "github.com/yungbote/rateio-sync-backend/internal/data/repos/rateio"
	"github.com/yungbote/rateio-sync-backend/internal/platform/apierr"
)

var (
	errSelectionConflict = errors.New("a line cannot be both kept and changed in the same apply")
	errNothingToApply    = errors.New("nothing to apply: selection is empty")
	errInvalidOptions    = errors.New("onMissingInSheet must be KEEP_ACTIVE or INACTIVATE")
	errMigrationRequired = errors.New("migration required: hub table has no status column")
)

// applyPlan is what an apply call will actually touch, split by original classification.
type applyPlan struct {
	creates []DiffItem
	updates []DiffItem
	absents []DiffItem
	manter  []string
}

func (p applyPlan) empty() bool {
	return len(p.creates) == 0 && len(p.updates) == 0 && len(p.absents) == 0 && len(p.manter) == 0
}

func (p applyPlan) mutationKeys() []string {
	out := make([]string, 0, len(p.creates)+len(p.updates)+len(p.absents))
	out = append(out, diffKeys(p.creates)...)
	out = append(out, diffKeys(p.updates)...)
	out = append(out, diffKeys(p.absents)...)
	return out
}

func resolvePolicy(opts *Options) (MissingPolicy, error) {
	if opts == nil {
		return MissingInactivate, nil
	}
	switch MissingPolicy(strings.ToUpper(strings.TrimSpace(string(opts.OnMissingInSheet)))) {
	case "", MissingInactivate:
		return MissingInactivate, nil
	case MissingKeepActive:
		return MissingKeepActive, nil
	default:
		return "", apierr.New(http.StatusBadRequest, "invalid_options", errInvalidOptions)
	}
}

// planSelection scopes the filtered diff to the caller's selection. A nil selection
// applies everything. Keys are only honored under the bucket of their own diff type, so a
// key listed under the wrong bucket or absent from the diff is ignored. Manter keys must
// appear in the unfiltered diff; an already overridden key can be dismissed again.
func planSelection(filtered, unfiltered []DiffItem, sel *Selection) (applyPlan, error) {
	var plan applyPlan
	if sel == nil {
		for _, d := range filtered {
			plan.add(d)
		}
		if plan.empty() {
			return plan, apierr.New(http.StatusBadRequest, "nothing_to_apply", errNothingToApply)
		}
		return plan, nil
	}

	criar, atualizar, ausentes := keySet(sel.Criar), keySet(sel.Atualizar), keySet(sel.Ausentes)
	manter := keySet(sel.Manter)

	var conflicts []string
	for _, k := range orderedKeys(sel.Manter) {
		if criar[k] || atualizar[k] || ausentes[k] {
			conflicts = append(conflicts, k)
		}
	}
	if len(conflicts) > 0 {
		return plan, apierr.WithDetails(http.StatusBadRequest, "selection_conflict", errSelectionConflict,
			map[string]any{"conflicts": conflicts})
	}

	for _, d := range filtered {
		switch {
		case d.Tipo == DiffCreate && criar[d.NumeroDaLinha],
			d.Tipo == DiffUpdate && atualizar[d.NumeroDaLinha],
			d.Tipo == DiffAbsentFromSource && ausentes[d.NumeroDaLinha]:
			plan.add(d)
		}
	}

	seen := map[string]bool{}
	for _, d := range unfiltered {
		if manter[d.NumeroDaLinha] && !seen[d.NumeroDaLinha] {
			seen[d.NumeroDaLinha] = true
			plan.manter = append(plan.manter, d.NumeroDaLinha)
		}
	}

	if plan.empty() {
		return plan, apierr.New(http.StatusBadRequest, "nothing_to_apply", errNothingToApply)
	}
	return plan, nil
}

func (p *applyPlan) add(d DiffItem) {
	switch d.Tipo {
	case DiffCreate:
		p.creates = append(p.creates, d)
	case DiffUpdate:
		p.updates = append(p.updates, d)
	case DiffAbsentFromSource:
		p.absents = append(p.absents, d)
	}
}

// buildBatch converts the plan into hub writes. Absent rows only become inactivations
// under INACTIVATE; under KEEP_ACTIVE they are counted but left untouched.
func buildBatch(plan applyPlan, policy MissingPolicy, userID uuid.UUID) hubrepo.ApplyBatch {
	batch := hubrepo.ApplyBatch{
		Inserts:       make([]hubrepo.HubInsert, 0, len(plan.creates)),
		Updates:       make([]hubrepo.HubUpdate, 0, len(plan.updates)),
		Inactivations: []hubrepo.HubInactivation{},
	}
	for _, d := range plan.creates {
		batch.Inserts = append(batch.Inserts, hubrepo.HubInsert{
			Nome:        d.Source.Nome,
			NumeroLinha: d.NumeroDaLinha,
			UserID:      userID,
		})
	}
	for _, d := range plan.updates {
		batch.Updates = append(batch.Updates, hubrepo.HubUpdate{ID: d.Hub.ID, Nome: d.Source.Nome})
	}
	if policy == MissingInactivate {
		for _, d := range plan.absents {
			batch.Inactivations = append(batch.Inactivations, hubrepo.HubInactivation{ID: d.Hub.ID})
		}
	}
	return batch
}

func batchEmpty(b hubrepo.ApplyBatch) bool {
	return len(b.Inserts) == 0 && len(b.Updates) == 0 && len(b.Inactivations) == 0
}

// resolveCounts trusts the store's counts and falls back to the batch sizes for any count
// it did not report.
func resolveCounts(b hubrepo.ApplyBatch, res hubrepo.ApplyResult, keptActive int) ApplyResult {
	out := ApplyResult{
		Inserted:    orLen(res.Inserted, len(b.Inserts)),
		Updated:     orLen(res.Updated, len(b.Updates)),
		Inactivated: orLen(res.Inactivated, len(b.Inactivations)),
		KeptActive:  keptActive,
	}
	out.Total = out.Inserted + out.Updated + out.Inactivated + out.KeptActive
	return out
}

func orLen(v *int, n int) int {
	if v == nil {
		return n
	}
	return *v
}

func keySet(keys []string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		if n := NormalizeLineNumber(k); n.OK {
			out[n.Numero] = true
		}
	}
	return out
}

func orderedKeys(keys []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		n := NormalizeLineNumber(k)
		if !n.OK || seen[n.Numero] {
			continue
		}
		seen[n.Numero] = true
		out = append(out, n.Numero)
	}
	return out
}
