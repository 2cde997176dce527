package middleware

import (
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"meusensia.com.br/sensia-web/internal/observability"
)

// Logger emits one structured entry per request and exposes a request scoped
// logger through observability.FromContext.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	base = observability.OrNop(base)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			reqLogger := base
			if rid := chiMid.GetReqID(ctx); rid != "" {
				ctx = WithRequestID(ctx, rid)
				reqLogger = base.With(zap.String("request_id", rid))
			}
			ctx = observability.WithLogger(ctx, reqLogger)

			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.Status()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("remote_ip", ClientIP(r)),
				zap.Bool("htmx", r.Header.Get("HX-Request") == "true"),
			}
			switch {
			case rw.Status() >= 500:
				reqLogger.Error("request", fields...)
			case rw.Status() >= 400:
				reqLogger.Warn("request", fields...)
			default:
				reqLogger.Info("request", fields...)
			}
		})
	}
}

// ClientIP returns the caller address. Behind Cloud Run the last
// X-Forwarded-For hop is the client.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		p := strings.Split(xff, ",")
		return strings.TrimSpace(p[len(p)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
