package rateio

import (
	"sort"
	"strings"
)

// rowResult is the tagged outcome of validating one raw row: exactly one of valid,
// invalid or blank is meaningful.
type rowResult struct {
	valid   *SourceRow
	invalid *InvalidRow
	blank   bool
}

func validateRow(nome, numero any, line int) rowResult {
	nomeStr := strings.TrimSpace(cellString(nome))
	numeroStr := strings.TrimSpace(cellString(numero))
	if nomeStr == "" && numeroStr == "" {
		return rowResult{blank: true}
	}
	parsed := NormalizeLineNumber(numero)
	if !parsed.OK {
		return rowResult{invalid: &InvalidRow{Line: line, Value: numeroStr}}
	}
	return rowResult{valid: &SourceRow{NumeroDaLinha: parsed.Numero, Nome: nomeStr, Line: line}}
}

// NormalizeResult is the structured bag produced from a planilha. Rows holds the first
// occurrence of every valid key. Callers must reject the batch when InvalidRows or
// Duplicates is non-empty; EmptyNames are warnings only.
type NormalizeResult struct {
	Rows        []SourceRow    `json:"-"`
	InvalidRows []InvalidRow   `json:"invalidRows"`
	Duplicates  []DuplicateKey `json:"duplicates"`
	EmptyNames  []EmptyName    `json:"nomesVazios"`
}

func (r NormalizeResult) Rejected() bool {
	return len(r.InvalidRows) > 0 || len(r.Duplicates) > 0
}

// NormalizeRows turns raw planilha rows into canonical rows. Elements may be arrays
// (positional cells, optional header row) or objects keyed by header. startLine is the
// source row number of raw[0].
func NormalizeRows(raw []any, startLine int) NormalizeResult {
	if startLine < 1 {
		startLine = 1
	}

	var arrays [][]any
	var arrayRaw []int
	for i, r := range raw {
		if cells, ok := r.([]any); ok {
			arrays = append(arrays, cells)
			arrayRaw = append(arrayRaw, i)
		}
	}
	layout := columnLayout{nome: 0, numero: 1}
	headerRaw := -1
	if len(arrays) > 0 {
		layout = detectLayout(arrays)
		if layout.dataStart > 0 {
			headerRaw = arrayRaw[layout.dataStart-1]
		}
	}

	var results []rowResult
	for i, r := range raw {
		line := startLine + i
		if headerRaw >= 0 && i <= headerRaw {
			continue
		}
		switch t := r.(type) {
		case []any:
			results = append(results, validateRow(cellAt(t, layout.nome), cellAt(t, layout.numero), line))
		case map[string]any:
			nome, numero := fieldsFromObject(t)
			results = append(results, validateRow(nome, numero, line))
		case nil:
			continue
		default:
			results = append(results, rowResult{invalid: &InvalidRow{Line: line, Value: cellString(t)}})
		}
	}
	return collect(results)
}

func collect(results []rowResult) NormalizeResult {
	out := NormalizeResult{
		InvalidRows: []InvalidRow{},
		Duplicates:  []DuplicateKey{},
		EmptyNames:  []EmptyName{},
	}
	lines := map[string][]int{}
	var order []string
	for _, res := range results {
		switch {
		case res.blank:
			continue
		case res.invalid != nil:
			out.InvalidRows = append(out.InvalidRows, *res.invalid)
		case res.valid != nil:
			row := *res.valid
			if _, seen := lines[row.NumeroDaLinha]; !seen {
				order = append(order, row.NumeroDaLinha)
				out.Rows = append(out.Rows, row)
				if row.Nome == "" {
					out.EmptyNames = append(out.EmptyNames, EmptyName{Line: row.Line, NumeroDaLinha: row.NumeroDaLinha})
				}
			}
			lines[row.NumeroDaLinha] = append(lines[row.NumeroDaLinha], row.Line)
		}
	}
	for _, key := range order {
		if ls := lines[key]; len(ls) > 1 {
			sort.Ints(ls)
			out.Duplicates = append(out.Duplicates, DuplicateKey{NumeroDaLinha: key, Lines: ls})
		}
	}
	return out
}

func cellAt(cells []any, idx int) any {
	if idx < 0 || idx >= len(cells) {
		return nil
	}
	return cells[idx]
}
