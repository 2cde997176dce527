package taxonomy

// Entry is one tag of the site taxonomy.
type Entry struct {
	Tag         string `json:"tag"`
	Title       string `json:"title"`
	Description string `json:"jcr:description,omitempty"`
}

// Map resolves tag ids to entries. A Map is immutable once built and safe for
// concurrent use.
type Map struct {
	entries []Entry
	byTag   map[string]Entry
}

// NewMap indexes entries by tag. Later duplicates win.
func NewMap(entries []Entry) *Map {
	m := &Map{
		entries: append([]Entry(nil), entries...),
		byTag:   make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		if e.Tag == "" {
			continue
		}
		m.byTag[e.Tag] = e
	}
	return m
}

// Empty returns a map without entries.
func Empty() *Map { return NewMap(nil) }

// Len reports the number of distinct tags.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byTag)
}

// Lookup returns the entry for tag.
func (m *Map) Lookup(tag string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	e, ok := m.byTag[tag]
	return e, ok
}

// Title returns the title for tag when one is known.
func (m *Map) Title(tag string) (string, bool) {
	e, ok := m.Lookup(tag)
	if !ok || e.Title == "" {
		return "", false
	}
	return e.Title, true
}

// TitleOr returns the title for tag, or tag itself when unknown.
func (m *Map) TitleOr(tag string) string {
	if t, ok := m.Title(tag); ok {
		return t
	}
	return tag
}

// FirstTitle resolves the first tag of tags, falling back to the raw id.
func (m *Map) FirstTitle(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return m.TitleOr(tags[0])
}

// Entries returns a copy of the entries in source order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}
