package site

import (
	"context"
	"crypto/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// DefaultTTL is how long a session serves the same data.
const DefaultTTL = 10 * time.Minute

// Manager hands out the current session and replaces it once it expires.
type Manager struct {
	opts Options
	ttl  time.Duration
	now  func() time.Time

	current atomic.Pointer[Session]
	mu      sync.Mutex
}

// NewManager returns a Manager whose sessions live for ttl.
func NewManager(opts Options, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{opts: opts.withDefaults(), ttl: ttl, now: time.Now}
}

// Current returns the live session, starting a new one when the previous
// expired. Requests holding the old session keep using it.
func (m *Manager) Current() *Session {
	if s := m.current.Load(); s != nil && !m.expired(s) {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.current.Load(); s != nil && !m.expired(s) {
		return s
	}
	now := m.now()
	s := NewSession(ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(), m.opts)
	s.Created = now
	m.current.Store(s)
	m.opts.Logger.Info("site session started", zap.String("session", s.ID))
	return s
}

// Reset drops the current session.
func (m *Manager) Reset() {
	m.current.Store(nil)
}

func (m *Manager) expired(s *Session) bool {
	return m.now().Sub(s.Created) >= m.ttl
}

type sessionKey struct{}

// WithSession stores s on ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored on ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// Middleware attaches the current session to each request.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), m.Current())))
	})
}
