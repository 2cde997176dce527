package listing

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const locationSep = "---"

// Location is the (region, city, state) triple encoded in a location tag such
// as "sensia:locations-for-cards/sudeste---belo-horizonte---mg".
type Location struct {
	Region string
	City   string
	State  string
}

// Segment re-encodes the location as the final tag segment.
func (l Location) Segment() string {
	return l.Region + locationSep + l.City + locationSep + l.State
}

// ParseLocationCard decodes a location tag. Tags without a path separator or
// with fewer than three "---" parts are not location tags.
func ParseLocationCard(raw string) (Location, bool) {
	parts := strings.Split(raw, "/")
	if len(parts) < 2 {
		return Location{}, false
	}
	fields := strings.Split(parts[len(parts)-1], locationSep)
	if len(fields) < 3 {
		return Location{}, false
	}
	return Location{Region: fields[0], City: fields[1], State: fields[2]}, true
}

// Locations parses every location tag in tags, skipping the ones that do not
// decode.
func Locations(tags Tags) []Location {
	out := make([]Location, 0, len(tags))
	for _, t := range tags.Split() {
		if loc, ok := ParseLocationCard(t); ok {
			out = append(out, loc)
		}
	}
	return out
}

// CityToHyphenated turns a display city name into its URL form:
// "Belo Horizonte" -> "belo-horizonte".
func CityToHyphenated(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace), "-")
}

// HyphenatedToProperCity turns a URL city segment into its display form:
// "belo-horizonte" -> "Belo Horizonte".
func HyphenatedToProperCity(slug string) string {
	caser := cases.Title(language.BrazilianPortuguese)
	words := strings.Split(slug, "-")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
