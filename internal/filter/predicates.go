package filter

import (
	"math"
	"strings"
	"unicode"

	"meusensia.com.br/sensia-web/internal/listing"
)

// MatchesLocation reports whether rec lists state among its states and,
// when city is set, carries a location tag for that city in that state.
// Comparisons ignore case.
func MatchesLocation(rec listing.Record, state, city string) bool {
	state = strings.ToLower(state)
	hasState := false
	for _, s := range rec.LocationState {
		if strings.ToLower(s) == state {
			hasState = true
			break
		}
	}
	if !hasState {
		return false
	}
	if city == "" {
		return true
	}
	city = strings.ToLower(city)
	for _, loc := range listing.Locations(rec.LocationCard) {
		if strings.ToLower(loc.State) == state && strings.ToLower(loc.City) == city {
			return true
		}
	}
	return false
}

// tagLeaf returns the last ":" or "/" separated segment of a tag, lower
// cased with whitespace runs replaced by "-".
func tagLeaf(tag string) string {
	if i := strings.LastIndexAny(tag, ":/"); i >= 0 {
		tag = tag[i+1:]
	}
	return strings.Join(strings.FieldsFunc(strings.ToLower(tag), unicode.IsSpace), "-")
}

func matchesStatus(rec listing.Record, statuses []string) bool {
	for _, a := range rec.Availability {
		leaf := tagLeaf(a)
		for _, s := range statuses {
			if leaf == s {
				return true
			}
		}
	}
	return false
}

func matchesAmenities(rec listing.Record, amenities []string) bool {
	for _, a := range rec.Amenities.Split() {
		leaf := tagLeaf(a)
		for _, want := range amenities {
			if strings.HasPrefix(leaf, want) {
				return true
			}
		}
	}
	return false
}

func matchesBedrooms(rec listing.Record, bedrooms []int) bool {
	lo, hasLo := rec.DormsMin.Get()
	hi, hasHi := rec.DormsMax.Get()
	for _, n := range bedrooms {
		switch {
		case hasLo && hasHi:
			if n >= lo && n <= hi {
				return true
			}
		case hasLo:
			if n >= lo {
				return true
			}
		case hasHi:
			if n <= hi {
				return true
			}
		}
	}
	return false
}

// matchesPrice tests the record's price band against the filter band. A
// record without any price is excluded. With only one filter bound set the
// record is compared on its opposite edge only.
func matchesPrice(rec listing.Record, lo, hi listing.Number) bool {
	if !rec.PriceMin.Valid && !rec.PriceMax.Valid {
		return false
	}
	recLo := rec.PriceMin.Or(0)
	recHi := rec.PriceMax.Or(math.MaxInt)
	switch {
	case lo.Valid && hi.Valid:
		return recLo <= hi.Value && recHi >= lo.Value
	case lo.Valid:
		return recHi >= lo.Value
	default:
		return recLo <= hi.Value
	}
}

// Match reports whether rec satisfies every active predicate of p. Location
// is tested first, then status, amenities, bedrooms and price.
func (p Params) Match(rec listing.Record) bool {
	if p.State != "" && !MatchesLocation(rec, p.State, p.City) {
		return false
	}
	if len(p.Statuses) > 0 && !matchesStatus(rec, p.Statuses) {
		return false
	}
	if len(p.Amenities) > 0 && !matchesAmenities(rec, p.Amenities) {
		return false
	}
	if len(p.Bedrooms) > 0 && !matchesBedrooms(rec, p.Bedrooms) {
		return false
	}
	if (p.MinPrice.Valid || p.MaxPrice.Valid) && !matchesPrice(rec, p.MinPrice, p.MaxPrice) {
		return false
	}
	return true
}
