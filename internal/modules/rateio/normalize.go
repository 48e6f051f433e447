package rateio

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LineNumber is the outcome of parsing a join key. Numero holds canonical digits.
type LineNumber struct {
	OK     bool
	Numero string
}

var (
	sciNotationRe = regexp.MustCompile(`^[+-]?\d+(?:[.,]\d+)?[eE][+-]?\d+$`)
	digitsRe      = regexp.MustCompile(`^\d+$`)
	nonDigitRe    = regexp.MustCompile(`\D`)
)

// NormalizeLineNumber canonicalizes a phone line number coming from a spreadsheet cell.
func NormalizeLineNumber(v any) LineNumber {
	var digits string
	switch t := v.(type) {
	case nil:
		return LineNumber{}
	case float64:
		digits = floatDigits(t)
	case float32:
		digits = floatDigits(float64(t))
	case int:
		digits = strconv.FormatInt(int64(t), 10)
	case int64:
		digits = strconv.FormatInt(t, 10)
	case int32:
		digits = strconv.FormatInt(int64(t), 10)
	case uint64:
		digits = strconv.FormatUint(t, 10)
	case json.Number:
		digits = stringDigits(t.String())
	case string:
		digits = stringDigits(t)
	default:
		digits = stringDigits(fmt.Sprint(t))
	}

	digits = strings.TrimLeft(digits, "0")
	if len(digits) >= 12 && strings.HasPrefix(digits, "55") {
		if rest := digits[2:]; len(rest) == 10 || len(rest) == 11 {
			digits = rest
		}
	}
	if digits == "" || digits == "0" {
		return LineNumber{}
	}
	return LineNumber{OK: true, Numero: digits}
}

func floatDigits(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return nonDigitRe.ReplaceAllString(strconv.FormatFloat(math.Trunc(f), 'f', 0, 64), "")
}

func stringDigits(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return ""
	}

	if sciNotationRe.MatchString(s) {
		if f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return floatDigits(f)
		}
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		decimal, thousands := ",", "."
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			decimal, thousands = ".", ","
		}
		s = strings.ReplaceAll(s, thousands, "")
		if idx := strings.Index(s, decimal); idx >= 0 {
			s = s[:idx]
		}
	case hasDot || hasComma:
		sep := "."
		if hasComma {
			sep = ","
		}
		// Spreadsheets turn long digit strings into decimals like 85999998888.0.
		if parts := strings.Split(s, sep); len(parts) == 2 && digitsRe.MatchString(parts[0]) && digitsRe.MatchString(parts[1]) {
			s = parts[0]
		}
	}
	return nonDigitRe.ReplaceAllString(s, "")
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// NormalizeName folds a display name for equality checks only. It is never stored.
func NormalizeName(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks), s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// SameName reports whether two names are equal after NormalizeName.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
