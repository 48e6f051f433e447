package rateio

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Checksum hashes the canonical planilha so audit rows can tell identical inputs apart
// from changed ones. Row order and name formatting do not affect it.
func Checksum(rows []SourceRow) string {
	pairs := make([][2]string, 0, len(rows))
	for _, r := range rows {
		pairs = append(pairs, [2]string{r.NumeroDaLinha, NormalizeName(r.Nome)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	b, _ := json.Marshal(pairs)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
