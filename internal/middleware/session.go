package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "SENSIA_WEB_SESSION"

// SessionData is the visitor state carried in the signed cookie.
type SessionData struct {
	ID         string    `json:"id"`
	Locale     string    `json:"locale,omitempty"`
	CSRFToken  string    `json:"csrf,omitempty"`
	LastSearch string    `json:"search,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

var (
	sessionSignKey = ephemeralKey()
	sessionSecure  bool
)

func ephemeralKey() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return []byte("insecure-dev-key-please-set-SENSIA_WEB_SESSION_SIGNING_KEY")
	}
	return b
}

// ConfigureSessions sets the cookie signing key and the Secure flag. An
// empty key keeps the process-ephemeral one; it reports whether that
// happened.
func ConfigureSessions(signingKey string, secure bool) (ephemeral bool) {
	sessionSecure = secure
	if signingKey = strings.TrimSpace(signingKey); signingKey == "" {
		return true
	}
	sessionSignKey = []byte(signingKey)
	return false
}

// Session loads or initializes a session and stores it in request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		// the cookie must go out with the headers
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// nothing written (e.g. HEAD)
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// RememberSearch stores the last results URL so detail pages can link back.
func (s *SessionData) RememberSearch(u string) {
	if s.LastSearch == u {
		return
	}
	s.LastSearch = u
	s.MarkDirty()
}

// readSessionCookie parses and verifies the session cookie
func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payloadB64, sigB64, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return &SessionData{}, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sig, sign(payload)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(payload)
	return mac.Sum(nil)
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(sign(b))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   sessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
