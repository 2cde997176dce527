package contact

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"meusensia.com.br/sensia-web/internal/observability"
)

var (
	// ErrInvalid is returned when a form fails validation.
	ErrInvalid = errors.New("contact: invalid form")
	// ErrRateLimited is returned when a client submits too often.
	ErrRateLimited = errors.New("contact: rate limited")
)

// Submission is a validated form ready for delivery.
type Submission struct {
	ID          string    `json:"id"`
	Form        Form      `json:"form"`
	SubmittedAt time.Time `json:"submittedAt"`
	Lang        string    `json:"lang,omitempty"`
}

// Submitter delivers submissions.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}

// HTTPSubmitter posts submissions as JSON.
type HTTPSubmitter struct {
	endpoint string
	http     *http.Client
}

// NewHTTPSubmitter posts to endpoint with a 5s timeout.
func NewHTTPSubmitter(endpoint string) *HTTPSubmitter {
	return &HTTPSubmitter{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (h *HTTPSubmitter) Submit(ctx context.Context, s Submission) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", s.ID)
	resp, err := h.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("contact: endpoint status %d", resp.StatusCode)
	}
	return nil
}

// LogSubmitter writes submissions to the log. It is used when no endpoint is
// configured.
type LogSubmitter struct {
	Logger *zap.Logger
}

func (l LogSubmitter) Submit(_ context.Context, s Submission) error {
	observability.OrNop(l.Logger).Info("contact submission",
		zap.String("id", s.ID),
		zap.String("state", s.Form.State),
		zap.String("cityCode", s.Form.CityCode),
		zap.String("lang", s.Lang),
	)
	return nil
}

// Service validates, throttles and delivers contact forms.
type Service struct {
	submitter Submitter
	logger    *zap.Logger
	perMinute int
	now       func() time.Time

	mu       sync.Mutex
	limiters map[string]*clientLimiter
	entropy  *ulid.MonotonicEntropy
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdle = 10 * time.Minute

// NewService builds a Service allowing perMinute submissions per client.
// perMinute <= 0 disables throttling.
func NewService(submitter Submitter, perMinute int, logger *zap.Logger) *Service {
	logger = observability.OrNop(logger)
	if submitter == nil {
		submitter = LogSubmitter{Logger: logger}
	}
	return &Service{
		submitter: submitter,
		logger:    logger,
		perMinute: perMinute,
		now:       time.Now,
		limiters:  map[string]*clientLimiter{},
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Submit validates f and delivers it on behalf of client. Validation
// failures wrap ErrInvalid and return the field errors.
func (s *Service) Submit(ctx context.Context, client, lang string, f Form) (Submission, FieldErrors, error) {
	if errs := f.Validate(); errs != nil {
		return Submission{}, errs, ErrInvalid
	}
	if !s.allow(client) {
		s.logger.Warn("contact rate limited", zap.String("client", client))
		return Submission{}, nil, ErrRateLimited
	}
	now := s.now()
	sub := Submission{
		ID:          s.newID(now),
		Form:        f,
		SubmittedAt: now.UTC(),
		Lang:        lang,
	}
	if err := s.submitter.Submit(ctx, sub); err != nil {
		s.logger.Error("contact submission failed", zap.String("id", sub.ID), zap.Error(err))
		return Submission{}, nil, fmt.Errorf("contact: submit %s: %w", sub.ID, err)
	}
	return sub, nil, nil
}

func (s *Service) newID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

func (s *Service) allow(client string) bool {
	if s.perMinute <= 0 {
		return true
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, cl := range s.limiters {
		if now.Sub(cl.lastSeen) > limiterIdle {
			delete(s.limiters, k)
		}
	}
	cl, ok := s.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)}
		s.limiters[client] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}
