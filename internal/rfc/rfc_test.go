package rfc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/sat-mexico/internal/rfc"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		valid    bool
		rfc      string
		category rfc.Category
	}{
		{"persona fisica", "GODE561231GR8", true, "GODE561231GR8", rfc.CategoryPersonaFisica},
		{"persona fisica lowercase with spaces", " gode 561231 gr8 ", true, "GODE561231GR8", rfc.CategoryPersonaFisica},
		{"persona fisica with enie", "ÑAÑA800101AB1", true, "ÑAÑA800101AB1", rfc.CategoryPersonaFisica},
		{"persona fisica lowercase enie", "muñe800101ab1", true, "MUÑE800101AB1", rfc.CategoryPersonaFisica},
		{"persona moral", "ABC680524P76", true, "ABC680524P76", rfc.CategoryPersonaMoral},
		{"persona moral with ampersand", "A&C-010101-AAA", true, "A&C010101AAA", rfc.CategoryPersonaMoral},
		{"date digits not checked", "ABC999999AAA", true, "ABC999999AAA", rfc.CategoryPersonaMoral},
		{"generic public", "XAXX010101000", true, "XAXX010101000", rfc.CategoryGenericPublic},
		{"generic public lower and hyphens", "xaxx-010101-000", true, "XAXX010101000", rfc.CategoryGenericPublic},
		{"generic public with spaces", "XAXX 010101 000", true, "XAXX010101000", rfc.CategoryGenericPublic},
		{"generic foreign", "XEXX010101000", true, "XEXX010101000", rfc.CategoryGenericForeign},
		{"too short", "ABC123", false, "ABC123", rfc.CategoryInvalid},
		{"empty", "", false, "", rfc.CategoryInvalid},
		{"letters in date", "GODE56123AGR8", false, "GODE56123AGR8", rfc.CategoryInvalid},
		{"too long", "GODE561231GR89", false, "GODE561231GR89", rfc.CategoryInvalid},
		{"dots are not stripped", "ABC.680524.P76", false, "ABC.680524.P76", rfc.CategoryInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rfc.Classify(tt.input)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.rfc, result.RFC)
			assert.Equal(t, tt.category, result.Category)
			assert.Equal(t, tt.category.Label(), result.Type)
		})
	}
}

func TestClassify_Messages(t *testing.T) {
	assert.Equal(t, "RFC válido", rfc.Classify("GODE561231GR8").Message)
	assert.Equal(t, "RFC válido", rfc.Classify("ABC680524P76").Message)
	assert.Equal(t, "RFC genérico público general", rfc.Classify(rfc.GenericPublic).Message)
	assert.Equal(t, "RFC genérico extranjero", rfc.Classify(rfc.GenericForeign).Message)
	assert.Equal(t, "RFC inválido", rfc.Classify("nope").Message)
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Persona Física", rfc.CategoryPersonaFisica.Label())
	assert.Equal(t, "Persona Moral", rfc.CategoryPersonaMoral.Label())
	assert.Equal(t, "Público General", rfc.CategoryGenericPublic.Label())
	assert.Equal(t, "Extranjero", rfc.CategoryGenericForeign.Label())
	assert.Equal(t, "Desconocido", rfc.CategoryInvalid.Label())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gode-561231-gr8", "GODE561231GR8"},
		{" abc 680524\tp76\n", "ABC680524P76"},
		{"abc.680524/p76", "ABC.680524/P76"},
		{"ñaña 800101", "ÑAÑA800101"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, rfc.Format(tt.input))
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gode-561231-gr8", "GODE561231GR8"},
		{"abc.680524/p76", "ABC680524P76"},
		{"a&c (010101) aaa!", "A&C010101AAA"},
		{"ñaña_800101", "ÑAÑA800101"},
		{"n\u0303ana800101", "ÑANA800101"},
		{"áé", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, rfc.Clean(tt.input))
		})
	}
}

func TestNormalizers_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"gode-561231-gr8",
		"  xaxx 010101 000 ",
		"abc.680524/p76",
		"ñaña&800101-ab1",
		"Ñana 800101",
		"straße-123",
		"日本語 rfc-1",
		"a b c",
		"n-\u0303",
		"abn \u0303800101ab1",
	}

	for _, in := range inputs {
		once := rfc.Format(in)
		assert.Equal(t, once, rfc.Format(once), "Format not idempotent for %q", in)

		cleaned := rfc.Clean(in)
		assert.Equal(t, cleaned, rfc.Clean(cleaned), "Clean not idempotent for %q", in)
	}
}

func TestFormat_ComposesAcrossSeparators(t *testing.T) {
	assert.Equal(t, "Ñ", rfc.Format("n-\u0303"))

	result := rfc.Classify("abn \u0303800101ab1")
	assert.Equal(t, "ABÑ800101AB1", result.RFC)
	assert.Equal(t, rfc.CategoryPersonaMoral, result.Category)
	assert.Equal(t, rfc.Classify(result.RFC), result)
}

func TestIsValid(t *testing.T) {
	assert.True(t, rfc.IsValid("GODE561231GR8"))
	assert.False(t, rfc.IsValid("ABC123"))
}
