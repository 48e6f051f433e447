package rateio

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	src := indexSource([]SourceRow{{NumeroDaLinha: "1001", Nome: "  José  Silva"}})
	assert.Equal(t, "PRESENT:jose silva", ContentHash("1001", src))
	assert.Equal(t, "ABSENT", ContentHash("1002", src))
}

func TestFilterOverriddenSuppressesOnlyMatchingHash(t *testing.T) {
	source := []SourceRow{{NumeroDaLinha: "1001", Nome: "Ana S."}}
	hub := []HubRow{hubRow("1001", "Ana Silva", "active"), hubRow("1002", "Bruno", "active")}
	diffs, _ := ComputeDiff(source, hub)
	require.Len(t, diffs, 2)

	src := indexSource(source)
	overrides := buildOverrides([]string{"1001", "1002"}, src, uuid.New(), time.Now())

	kept, suppressed := FilterOverridden(diffs, overrides, src)
	assert.Empty(t, kept)
	assert.Equal(t, 2, suppressed)

	// The planilha changed for 1001, so its override is stale and the diff comes back.
	changed := []SourceRow{{NumeroDaLinha: "1001", Nome: "Ana Souza"}}
	diffs, _ = ComputeDiff(changed, hub)
	kept, suppressed = FilterOverridden(diffs, overrides, indexSource(changed))
	require.Len(t, kept, 1)
	assert.Equal(t, "1001", kept[0].NumeroDaLinha)
	assert.Equal(t, 1, suppressed)
}

func TestFilterOverriddenIgnoresKeysWithoutDiff(t *testing.T) {
	source := []SourceRow{{NumeroDaLinha: "1001", Nome: "Ana"}}
	src := indexSource(source)
	diffs, _ := ComputeDiff(source, nil)
	overrides := buildOverrides([]string{"9999"}, src, uuid.New(), time.Now())

	kept, suppressed := FilterOverridden(diffs, overrides, src)
	assert.Equal(t, diffs, kept)
	assert.Zero(t, suppressed)
}

func TestChecksumIgnoresOrderAndFormatting(t *testing.T) {
	a := Checksum([]SourceRow{{NumeroDaLinha: "1", Nome: "Ana"}, {NumeroDaLinha: "2", Nome: "Bruno"}})
	b := Checksum([]SourceRow{{NumeroDaLinha: "2", Nome: "BRUNO "}, {NumeroDaLinha: "1", Nome: "ana"}})
	c := Checksum([]SourceRow{{NumeroDaLinha: "1", Nome: "Ana"}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
