package rateio

import (
	"fmt"
	"strings"
)

type field int

const (
	fieldNone field = iota
	fieldNome
	fieldNumero
)

// headerPatterns is checked in order; the first matching predicate wins.
var headerPatterns = []struct {
	match func(normalized string) bool
	field field
}{
	{func(h string) bool { return strings.Contains(h, "nome completo") }, fieldNome},
	{func(h string) bool { return h == "nome" }, fieldNome},
	{func(h string) bool { return strings.Contains(h, "nomecompleto") }, fieldNome},
	{func(h string) bool { return strings.Contains(h, "numero") && strings.Contains(h, "linha") }, fieldNumero},
	{func(h string) bool { return strings.Contains(h, "numero_da_linha") }, fieldNumero},
}

// headerScanLimit bounds how far down we look for a header row before assuming the
// planilha has none.
const headerScanLimit = 10

func classifyHeader(cell any) field {
	h := NormalizeName(cellString(cell))
	if h == "" {
		return fieldNone
	}
	for _, p := range headerPatterns {
		if p.match(h) {
			return p.field
		}
	}
	return fieldNone
}

// columnLayout says where each field lives in an array row. dataStart is the index of the
// first data row.
type columnLayout struct {
	nome      int
	numero    int
	dataStart int
}

// detectLayout finds the header row among the first rows. Without one, column 0 is the
// name, column 1 the number and every row is data.
func detectLayout(rows [][]any) columnLayout {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		nome, numero := -1, -1
		for col, cell := range rows[i] {
			switch classifyHeader(cell) {
			case fieldNome:
				if nome < 0 {
					nome = col
				}
			case fieldNumero:
				if numero < 0 {
					numero = col
				}
			}
		}
		if nome < 0 && numero < 0 {
			continue
		}
		if nome < 0 {
			nome = 0
			if numero == 0 {
				nome = 1
			}
		}
		if numero < 0 {
			numero = 1
			if nome == 1 {
				numero = 0
			}
		}
		return columnLayout{nome: nome, numero: numero, dataStart: i + 1}
	}
	return columnLayout{nome: 0, numero: 1, dataStart: 0}
}

// fieldsFromObject maps a keyed row through the same header table. Pasted rows often
// carry a bare "numero" key, accepted when no column matched.
func fieldsFromObject(obj map[string]any) (nome any, numero any) {
	for k, v := range obj {
		switch classifyHeader(k) {
		case fieldNome:
			if nome == nil {
				nome = v
			}
		case fieldNumero:
			if numero == nil {
				numero = v
			}
		}
	}
	if numero == nil {
		for k, v := range obj {
			if h := NormalizeName(k); h == "numero" || h == "linha" {
				numero = v
				break
			}
		}
	}
	return nome, numero
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
