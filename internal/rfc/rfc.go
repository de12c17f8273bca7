// Package rfc validates, classifies and normalizes Mexican taxpayer
// identifiers (Registro Federal de Contribuyentes).
//
// Classification never fails: an identifier that matches no rule is
// reported as CategoryInvalid with Valid=false.
package rfc

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Generic identifiers issued by SAT
const (
	GenericPublic  = "XAXX010101000"
	GenericForeign = "XEXX010101000"
)

// Category is the kind of taxpayer an RFC belongs to
type Category string

const (
	CategoryPersonaFisica  Category = "persona_fisica"
	CategoryPersonaMoral   Category = "persona_moral"
	CategoryGenericPublic  Category = "publico_general"
	CategoryGenericForeign Category = "extranjero"
	CategoryInvalid        Category = "desconocido"
)

// Label returns the display name of the category
func (c Category) Label() string {
	switch c {
	case CategoryPersonaFisica:
		return "Persona Física"
	case CategoryPersonaMoral:
		return "Persona Moral"
	case CategoryGenericPublic:
		return "Público General"
	case CategoryGenericForeign:
		return "Extranjero"
	default:
		return "Desconocido"
	}
}

var (
	// 4 letters + yymmdd + 3 homoclave characters
	fisicaPattern = regexp.MustCompile(`^[A-ZÑ&]{4}\d{6}[A-Z0-9]{3}$`)
	// 3 letters + yymmdd + 3 homoclave characters
	moralPattern = regexp.MustCompile(`^[A-ZÑ&]{3}\d{6}[A-Z0-9]{3}$`)

	separatorPattern = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}-]`)
	invalidPattern   = regexp.MustCompile(`[^A-ZÑ&0-9]`)
)

// Result is the outcome of Classify
type Result struct {
	Valid    bool     `json:"valid"`
	RFC      string   `json:"rfc"`
	Category Category `json:"category"`
	Type     string   `json:"type"`
	Message  string   `json:"message"`
}

// Classify normalizes raw and reports which kind of taxpayer it identifies.
// The six date digits are not checked against the calendar.
func Classify(raw string) Result {
	id := Format(raw)

	var category Category
	switch {
	case id == GenericPublic:
		category = CategoryGenericPublic
	case id == GenericForeign:
		category = CategoryGenericForeign
	case fisicaPattern.MatchString(id):
		category = CategoryPersonaFisica
	case moralPattern.MatchString(id):
		category = CategoryPersonaMoral
	default:
		category = CategoryInvalid
	}

	return Result{
		Valid:    category != CategoryInvalid,
		RFC:      id,
		Category: category,
		Type:     category.Label(),
		Message:  message(category),
	}
}

func message(c Category) string {
	switch c {
	case CategoryGenericPublic:
		return "RFC genérico público general"
	case CategoryGenericForeign:
		return "RFC genérico extranjero"
	case CategoryInvalid:
		return "RFC inválido"
	default:
		return "RFC válido"
	}
}

// Format uppercases raw and removes whitespace and hyphens only
func Format(raw string) string {
	stripped := separatorPattern.ReplaceAllString(cases.Upper(language.Spanish).String(raw), "")
	return norm.NFC.String(stripped)
}

// Clean uppercases raw and removes every character outside A-Z, Ñ, & and 0-9
func Clean(raw string) string {
	return invalidPattern.ReplaceAllString(upper(raw), "")
}

// IsValid is a shorthand for Classify(raw).Valid
func IsValid(raw string) bool {
	return Classify(raw).Valid
}

// upper applies Spanish casing and composes combining marks, so a
// decomposed "N + tilde" survives as Ñ.
func upper(s string) string {
	return norm.NFC.String(cases.Upper(language.Spanish).String(s))
}
