package filter

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"meusensia.com.br/sensia-web/internal/listing"
)

var (
	stateCityPath = regexp.MustCompile(`/imoveis/([^/]+)/([^/]+)$`)
	statePath     = regexp.MustCompile(`/imoveis/([^/]+)$`)
)

// Branch identifies which rule selected the records.
type Branch int

const (
	BranchAll Branch = iota
	BranchResults
	BranchStateCity
	BranchState
)

// Resolve returns the branch for p and, for the path branches, p with State
// and City taken from the path. Path branches ignore query predicates.
func Resolve(p Params) (Branch, Params) {
	if p.Path == ResultsPath {
		return BranchResults, p
	}
	if m := stateCityPath.FindStringSubmatch(p.Path); m != nil {
		return BranchStateCity, Params{Path: p.Path, State: strings.ToLower(m[1]), City: strings.ToLower(m[2])}
	}
	if m := statePath.FindStringSubmatch(p.Path); m != nil {
		return BranchState, Params{Path: p.Path, State: strings.ToLower(m[1])}
	}
	return BranchAll, Params{Path: p.Path}
}

// Apply filters records by p without memoisation. Records are never
// mutated; the all-records branch returns the input slice itself.
func Apply(records []listing.Record, p Params) []listing.Record {
	branch, p := Resolve(p)
	if branch == BranchAll {
		return records
	}
	out := make([]listing.Record, 0, len(records))
	for _, rec := range records {
		if p.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Engine memoises the most recent filter result. A call with the same
// parameter key over the same record slice returns the cached slice itself.
// Each call takes a generation number; a call that finishes after a newer
// one started does not replace the newer memo.
type Engine struct {
	mu   sync.Mutex
	gen  uint64
	last *memo
}

type memo struct {
	gen     uint64
	key     Key
	records *listing.Record
	n       int
	result  []listing.Record
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine { return &Engine{} }

// FilterURL filters records for the page at u.
func (e *Engine) FilterURL(records []listing.Record, u *url.URL) []listing.Record {
	return e.Filter(records, ParseParams(u))
}

// Filter filters records for p, consulting the memo first.
func (e *Engine) Filter(records []listing.Record, p Params) []listing.Record {
	key := p.Key()
	head, n := identity(records)

	e.mu.Lock()
	if m := e.last; m != nil && m.key == key && m.records == head && m.n == n {
		e.mu.Unlock()
		return m.result
	}
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	result := Apply(records, p)

	e.mu.Lock()
	if e.last == nil || e.last.gen < gen {
		e.last = &memo{gen: gen, key: key, records: head, n: n, result: result}
	}
	e.mu.Unlock()
	return result
}

// Reset drops the memo.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.last = nil
	e.mu.Unlock()
}

// identity describes a record slice by its backing array and length.
func identity(records []listing.Record) (*listing.Record, int) {
	if len(records) == 0 {
		return nil, 0
	}
	return &records[0], len(records)
}
