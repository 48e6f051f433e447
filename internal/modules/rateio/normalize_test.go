package rateio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLineNumberEquivalentForms(t *testing.T) {
	forms := []any{
		"85999998888",
		" 85999998888 ",
		float64(85999998888),
		"5585999998888",
		"0085999998888",
		int64(85999998888),
		json.Number("85999998888"),
		"(85) 99999-8888",
		"+55 85 99999-8888",
		"8.5999998888E10",
		"8,5999998888e10",
		"85999998888.0",
		"85999998888,00",
		"85.999.998.888",
		"85,999,998,888.00",
		"85.999.998.888,00",
	}
	for _, f := range forms {
		got := NormalizeLineNumber(f)
		assert.Truef(t, got.OK, "form %#v should parse", f)
		assert.Equalf(t, "85999998888", got.Numero, "form %#v", f)
	}
}

func TestNormalizeLineNumberInvalid(t *testing.T) {
	for _, v := range []any{nil, "", "   ", "0", "000", "abc", float64(0)} {
		assert.Falsef(t, NormalizeLineNumber(v).OK, "value %#v should be invalid", v)
	}
}

func TestNormalizeLineNumberKeepsShortCountryPrefix(t *testing.T) {
	// 55 followed by a 9 digit remainder is not a country code.
	assert.Equal(t, "55123456789", NormalizeLineNumber("55123456789").Numero)
	assert.Equal(t, "12345678901", NormalizeLineNumber("5512345678901").Numero)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "joao da silva", NormalizeName("  João   da  SILVA "))
	assert.True(t, SameName("José Antônio", "jose antonio"))
	assert.False(t, SameName("Ana Silva", "Ana Souza"))
	assert.Equal(t, "", NormalizeName("   "))
}
