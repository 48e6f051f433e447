package rateio

import "github.com/google/uuid"

// ModuleKey is the profile entitlement that gates this integration.
const ModuleKey = "rateio_claro"

type DiffType string

const (
	DiffCreate           DiffType = "CREATE"
	DiffUpdate           DiffType = "UPDATE"
	DiffAbsentFromSource DiffType = "ABSENT_FROM_SOURCE"
)

type MissingPolicy string

const (
	MissingInactivate MissingPolicy = "INACTIVATE"
	MissingKeepActive MissingPolicy = "KEEP_ACTIVE"
)

// SourceRow is a canonical planilha row. Line is the 1-based row in the source.
type SourceRow struct {
	NumeroDaLinha string `json:"numero_da_linha"`
	Nome          string `json:"nome"`
	Line          int    `json:"line"`
}

// HubRow is the slice of a hub line the diff needs. Status is empty when unknown.
type HubRow struct {
	ID          uuid.UUID
	Nome        string
	NumeroLinha string
	Status      string
}

type DiffSource struct {
	Nome string `json:"nome"`
}

type DiffHub struct {
	ID     uuid.UUID `json:"id"`
	Nome   string    `json:"nome"`
	Status *string   `json:"status"`
}

// DiffItem has Source only for CREATE, Hub only for ABSENT_FROM_SOURCE and both for UPDATE.
type DiffItem struct {
	NumeroDaLinha string      `json:"numero_da_linha"`
	Tipo          DiffType    `json:"tipo"`
	Source        *DiffSource `json:"source"`
	Hub           *DiffHub    `json:"hub"`
}

type Summary struct {
	Criar     int `json:"criar"`
	Atualizar int `json:"atualizar"`
	Ausentes  int `json:"ausentes"`
}

type InvalidRow struct {
	Line  int    `json:"line"`
	Value string `json:"value"`
}

type DuplicateKey struct {
	NumeroDaLinha string `json:"numero_da_linha"`
	Lines         []int  `json:"lines"`
}

type EmptyName struct {
	Line          int    `json:"line"`
	NumeroDaLinha string `json:"numero_da_linha"`
}

type Options struct {
	OnMissingInSheet MissingPolicy `json:"onMissingInSheet,omitempty"`
}

// Selection lists approved keys per original classification. Manter marks keys whose
// diff the caller dismissed.
type Selection struct {
	Criar     []string `json:"criar,omitempty"`
	Atualizar []string `json:"atualizar,omitempty"`
	Ausentes  []string `json:"ausentes,omitempty"`
	Manter    []string `json:"manter,omitempty"`
}

type Warnings struct {
	NomesVazios []EmptyName `json:"nomesVazios"`
}

type PreviewResult struct {
	Diffs    []DiffItem `json:"diffs"`
	Summary  Summary    `json:"summary"`
	Warnings Warnings   `json:"warnings"`
}

type ApplyResult struct {
	Inserted    int `json:"inserted"`
	Updated     int `json:"updated"`
	Inactivated int `json:"inactivated"`
	KeptActive  int `json:"keptActive"`
	Total       int `json:"total"`
}
