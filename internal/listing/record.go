package listing

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Templates used by the content index to discriminate page kinds.
const (
	TemplateListing = "imovel-default"
	TemplateStore   = "loja"
)

// Record is one row of a content query index. Listing pages and store pages
// share the shape; Template tells them apart.
type Record struct {
	Path          string `json:"path"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Image         string `json:"image,omitempty"`
	ListingName   string `json:"listingName,omitempty"`
	Template      string `json:"template,omitempty"`
	LocationState Tags   `json:"locationState,omitempty"`
	LocationCard  Tags   `json:"locationCard,omitempty"`
	Availability  Tags   `json:"availability,omitempty"`
	Amenities     Tags   `json:"amenities,omitempty"`
	CardStatus    Tags   `json:"cardStatus,omitempty"`
	CardQuartos   Tags   `json:"cardQuartos,omitempty"`
	CardArea      string `json:"cardArea,omitempty"`
	CardHighlight string `json:"cardHighlight,omitempty"`
	DormsMin      Number `json:"searchDormitoriosMin,omitempty"`
	DormsMax      Number `json:"searchDormitoriosMax,omitempty"`
	PriceMin      Number `json:"searchPriceMin,omitempty"`
	PriceMax      Number `json:"searchPriceMax,omitempty"`
	LastModified  Number `json:"lastModified,omitempty"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	cp := r
	cp.LocationState = r.LocationState.clone()
	cp.LocationCard = r.LocationCard.clone()
	cp.Availability = r.Availability.clone()
	cp.Amenities = r.Amenities.clone()
	cp.CardStatus = r.CardStatus.clone()
	cp.CardQuartos = r.CardQuartos.clone()
	return cp
}

// CloneAll deep copies a record slice. A nil input stays nil.
func CloneAll(src []Record) []Record {
	if src == nil {
		return nil
	}
	out := make([]Record, len(src))
	for i := range src {
		out[i] = src[i].Clone()
	}
	return out
}

// WithTemplate keeps the records whose template equals name.
func WithTemplate(records []Record, name string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Template == name {
			out = append(out, r)
		}
	}
	return out
}

// Tags is a list of tag ids. The index serialises lists either as JSON
// arrays or as strings holding a JSON array, and occasionally as a bare
// comma separated string; all three decode to the same value. Values of any
// other shape decode to no tags instead of failing the whole page.
type Tags []string

func (t Tags) clone() Tags {
	if t == nil {
		return nil
	}
	return append(Tags(nil), t...)
}

// First returns the first tag or "".
func (t Tags) First() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Split returns the individual tag ids. Entries may hold several ids joined
// by commas; the pieces are trimmed and empty ones dropped.
func (t Tags) Split() []string {
	var out []string
	for _, entry := range t {
		for _, id := range strings.Split(entry, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	if b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			*t = nil
			return nil
		}
		*t = compact(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// numbers and objects carry no tags
		*t = nil
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = nil
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			*t = compact(list)
			return nil
		}
	}
	*t = compact(strings.Split(s, ","))
	return nil
}

func compact(in []string) Tags {
	out := make(Tags, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Number is an optional integer that may arrive as a JSON number or as a
// numeric string. Empty strings and null leave it unset.
type Number struct {
	Value int
	Valid bool
}

// Int returns an integer Number.
func Int(v int) Number { return Number{Value: v, Valid: true} }

// Get returns the value and whether it was present.
func (n Number) Get() (int, bool) { return n.Value, n.Valid }

// Or returns the value or def when unset.
func (n Number) Or(def int) int {
	if !n.Valid {
		return def
	}
	return n.Value
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Value)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
	}
	if v, ok := ParseInt(raw); ok {
		*n = Int(v)
	}
	return nil
}

// ParseInt reads the leading base-10 integer of s, ignoring surrounding
// spaces and any trailing non-digit characters ("450000.00" reads 450000).
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
