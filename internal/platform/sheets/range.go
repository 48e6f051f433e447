package sheets

import (
	"regexp"
	"strconv"
	"strings"
)

var rangeStartRe = regexp.MustCompile(`^[A-Za-z]*(\d+)`)

// ParseRangeStartRow returns the 1-based row a range starts at ("Linhas!A3:B" -> 3).
// Ranges without an explicit row start at 1.
func ParseRangeStartRow(rng string) int {
	cells := strings.TrimSpace(rng)
	if idx := strings.LastIndex(cells, "!"); idx >= 0 {
		cells = cells[idx+1:]
	}
	start := cells
	if idx := strings.Index(start, ":"); idx >= 0 {
		start = start[:idx]
	}
	start = strings.ReplaceAll(start, "$", "")
	m := rangeStartRe.FindStringSubmatch(start)
	if len(m) < 2 {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
