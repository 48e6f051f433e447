package rateio

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/rateio-sync-backend/internal/domain"
)

func hubRow(numero, nome, status string) HubRow {
	return HubRow{ID: uuid.New(), NumeroLinha: numero, Nome: nome, Status: status}
}

func TestComputeDiffCreateWhenHubEmpty(t *testing.T) {
	diffs, summary := ComputeDiff([]SourceRow{{NumeroDaLinha: "85999990000", Nome: "Ana Silva", Line: 1}}, nil)
	require.Len(t, diffs, 1)
	assert.Equal(t, DiffCreate, diffs[0].Tipo)
	assert.Equal(t, "85999990000", diffs[0].NumeroDaLinha)
	assert.Nil(t, diffs[0].Hub)
	assert.Equal(t, Summary{Criar: 1}, summary)
}

func TestComputeDiffIdenticalActiveRowsProduceNothing(t *testing.T) {
	diffs, summary := ComputeDiff(
		[]SourceRow{{NumeroDaLinha: "85999990000", Nome: "ANA  SILVA"}},
		[]HubRow{hubRow("85999990000", "Ana Silva", "active")},
	)
	assert.Empty(t, diffs)
	assert.Equal(t, Summary{}, summary)
}

func TestComputeDiffReactivatesInactiveRow(t *testing.T) {
	h := hubRow("85999990000", "Ana Silva", "inactive")
	diffs, _ := ComputeDiff([]SourceRow{{NumeroDaLinha: "85999990000", Nome: "Ana Silva"}}, []HubRow{h})
	require.Len(t, diffs, 1)
	assert.Equal(t, DiffUpdate, diffs[0].Tipo)
	require.NotNil(t, diffs[0].Hub.Status)
	assert.Equal(t, "inactive", *diffs[0].Hub.Status)

	plan, err := planSelection(diffs, diffs, nil)
	require.NoError(t, err)
	batch := buildBatch(plan, MissingInactivate, uuid.New())
	require.Len(t, batch.Updates, 1)
	assert.Equal(t, h.ID, batch.Updates[0].ID)
}

func TestComputeDiffPartition(t *testing.T) {
	source := []SourceRow{
		{NumeroDaLinha: "1001", Nome: "A"},
		{NumeroDaLinha: "1002", Nome: "B"},
		{NumeroDaLinha: "1003", Nome: "C"},
		{NumeroDaLinha: "1004", Nome: "D"},
	}
	hub := []HubRow{
		hubRow("1002", "B", "active"),
		hubRow("1003", "C antigo", "active"),
		hubRow("1004", "D", "inactive"),
		hubRow("1005", "E", "active"),
		hubRow("1006", "F", ""),
	}
	diffs, summary := ComputeDiff(source, hub)

	byKey := map[string]DiffType{}
	for _, d := range diffs {
		_, dup := byKey[d.NumeroDaLinha]
		require.Falsef(t, dup, "key %s classified twice", d.NumeroDaLinha)
		byKey[d.NumeroDaLinha] = d.Tipo
	}
	assert.Equal(t, map[string]DiffType{
		"1001": DiffCreate,
		"1003": DiffUpdate,
		"1004": DiffUpdate,
		"1005": DiffAbsentFromSource,
		"1006": DiffAbsentFromSource,
	}, byKey)
	assert.Equal(t, Summary{Criar: 1, Atualizar: 2, Ausentes: 2}, summary)

	// Source order first, then hub order.
	var order []string
	for _, d := range diffs {
		order = append(order, d.NumeroDaLinha)
	}
	assert.Equal(t, []string{"1001", "1003", "1004", "1005", "1006"}, order)
}

func TestComputeDiffHubDuplicatesFirstWins(t *testing.T) {
	first := hubRow("1001", "Primeiro", "active")
	second := hubRow("1001", "Segundo", "active")

	diffs, _ := ComputeDiff([]SourceRow{{NumeroDaLinha: "1001", Nome: "Primeiro"}}, []HubRow{first, second})
	assert.Empty(t, diffs)

	diffs, summary := ComputeDiff(nil, []HubRow{first, second})
	require.Len(t, diffs, 1)
	assert.Equal(t, first.ID, diffs[0].Hub.ID)
	assert.Equal(t, 1, summary.Ausentes)
}

func TestHubRowsFromLinesNormalizesKeys(t *testing.T) {
	numero := "55 (85) 99999-0000"
	bad := "n/a"
	nome := "Ana"
	status := "active"
	rows, skipped := HubRowsFromLines([]*types.HubLine{
		{ID: uuid.New(), NumeroLinha: &numero, Nome: &nome, Status: &status},
		{ID: uuid.New(), NumeroLinha: &bad},
		{ID: uuid.New()},
	})
	assert.Equal(t, 2, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "85999990000", rows[0].NumeroLinha)
	assert.Equal(t, "active", rows[0].Status)
}
