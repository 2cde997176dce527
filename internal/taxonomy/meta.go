package taxonomy

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Page metadata names whose values are comma separated tag ids.
const (
	MetaStatus       = "tags-status"
	MetaAmenities    = "tags-lazer"
	MetaTipologia    = "tags-tipologia"
	MetaLocationCard = "tags-location-card"
	MetaCardQuartos  = "card-quartos"
)

// TagMetaNames lists the metadata rewritten by Meta.Resolve.
var TagMetaNames = []string{MetaStatus, MetaAmenities, MetaTipologia, MetaLocationCard, MetaCardQuartos}

// Meta is the metadata of one rendered page. Values start out as raw tag
// ids and are rewritten to titles once the taxonomy is available.
type Meta struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMeta copies values into a new Meta.
func NewMeta(values map[string]string) *Meta {
	m := &Meta{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the value of name.
func (m *Meta) Get(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[name]
}

// Set stores value under name.
func (m *Meta) Set(name, value string) {
	m.mu.Lock()
	m.values[name] = value
	m.mu.Unlock()
}

// TagIDs splits the value of name into tag ids.
func (m *Meta) TagIDs(name string) []string {
	var out []string
	for _, s := range strings.Split(m.Get(name), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Resolve replaces the tag ids of every TagMetaNames entry by their titles.
// Unknown ids are dropped; an entry with no known id is left untouched.
func (m *Meta) Resolve(tax *Map) {
	for _, name := range TagMetaNames {
		ids := m.TagIDs(name)
		if len(ids) == 0 {
			continue
		}
		titles := make([]string, 0, len(ids))
		for _, id := range ids {
			if t, ok := tax.Title(id); ok {
				titles = append(titles, t)
			}
		}
		if len(titles) > 0 {
			m.Set(name, strings.Join(titles, ", "))
		}
	}
}

// Resolved reports whether any of the location, status or amenity entries
// holds titles rather than tag ids.
func (m *Meta) Resolved() bool {
	for _, name := range []string{MetaLocationCard, MetaStatus, MetaAmenities} {
		if v := m.Get(name); v != "" && !strings.Contains(v, ":") {
			return true
		}
	}
	return false
}

// Wait defaults.
const (
	PollInterval = 50 * time.Millisecond
	PollTimeout  = 2 * time.Second
)

// WaitForUpdate blocks until meta is resolved, PollTimeout elapses or ctx
// ends, and reports whether meta was resolved.
func WaitForUpdate(ctx context.Context, meta *Meta) bool {
	return WaitForUpdateWithin(ctx, meta, PollInterval, PollTimeout)
}

// WaitForUpdateWithin is WaitForUpdate with explicit timings.
func WaitForUpdateWithin(ctx context.Context, meta *Meta, interval, timeout time.Duration) bool {
	if meta.Resolved() {
		return true
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case <-ctx.Done():
			return meta.Resolved()
		case <-deadline.C:
			return meta.Resolved()
		case <-ticker.C:
			if meta.Resolved() {
				return true
			}
		}
	}
}
