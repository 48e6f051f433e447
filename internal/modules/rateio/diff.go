package rateio

import (
	"github.com/google/uuid"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
	domain "github.com/yungbote/rateio-sync-backend/internal/domain/rateio"
)

// HubRowsFromLines keys hub lines by their normalized number. Lines whose stored number
// does not parse are returned as skipped.
func HubRowsFromLines(lines []*types.HubLine) (rows []HubRow, skipped int) {
	for _, l := range lines {
		if l == nil || l.NumeroLinha == nil {
			skipped++
			continue
		}
		parsed := NormalizeLineNumber(*l.NumeroLinha)
		if !parsed.OK {
			skipped++
			continue
		}
		row := HubRow{ID: l.ID, NumeroLinha: parsed.Numero}
		if l.Nome != nil {
			row.Nome = *l.Nome
		}
		if l.Status != nil {
			row.Status = *l.Status
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

// ComputeDiff classifies every key of source ∪ hub. Source keys must be unique; for
// duplicated hub keys the first row wins. An inactive hub row is always an UPDATE, even
// when the name already matches.
func ComputeDiff(source []SourceRow, hub []HubRow) ([]DiffItem, Summary) {
	hubByKey := make(map[string]HubRow, len(hub))
	for _, h := range hub {
		if _, ok := hubByKey[h.NumeroLinha]; !ok {
			hubByKey[h.NumeroLinha] = h
		}
	}
	sourceByKey := make(map[string]SourceRow, len(source))
	for _, s := range source {
		sourceByKey[s.NumeroDaLinha] = s
	}

	diffs := []DiffItem{}
	for _, s := range source {
		h, ok := hubByKey[s.NumeroDaLinha]
		if !ok {
			diffs = append(diffs, DiffItem{
				NumeroDaLinha: s.NumeroDaLinha,
				Tipo:          DiffCreate,
				Source:        &DiffSource{Nome: s.Nome},
			})
			continue
		}
		if !SameName(s.Nome, h.Nome) || h.Status == domain.StatusInactive {
			diffs = append(diffs, DiffItem{
				NumeroDaLinha: s.NumeroDaLinha,
				Tipo:          DiffUpdate,
				Source:        &DiffSource{Nome: s.Nome},
				Hub:           diffHub(h),
			})
		}
	}

	emitted := map[uuid.UUID]bool{}
	for _, h := range hub {
		if _, ok := sourceByKey[h.NumeroLinha]; ok {
			continue
		}
		first := hubByKey[h.NumeroLinha]
		if first.ID != h.ID || emitted[h.ID] {
			continue
		}
		emitted[h.ID] = true
		diffs = append(diffs, DiffItem{
			NumeroDaLinha: h.NumeroLinha,
			Tipo:          DiffAbsentFromSource,
			Hub:           diffHub(h),
		})
	}
	return diffs, Summarize(diffs)
}

func Summarize(diffs []DiffItem) Summary {
	var s Summary
	for _, d := range diffs {
		switch d.Tipo {
		case DiffCreate:
			s.Criar++
		case DiffUpdate:
			s.Atualizar++
		case DiffAbsentFromSource:
			s.Ausentes++
		}
	}
	return s
}

func diffHub(h HubRow) *DiffHub {
	out := &DiffHub{ID: h.ID, Nome: h.Nome}
	if h.Status != "" {
		status := h.Status
		out.Status = &status
	}
	return out
}
