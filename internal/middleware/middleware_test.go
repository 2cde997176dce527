package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meusensia.com.br/sensia-web/internal/i18n"
)

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func cookieNamed(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessionCookieRoundTrip(t *testing.T) {
	var first *SessionData
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if first == nil {
			first = s
			s.RememberSearch("/resultados?s=mg")
		} else {
			assert.Equal(t, first.ID, s.ID)
			assert.Equal(t, "/resultados?s=mg", s.LastSearch)
		}
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	c := cookieNamed(rec.Result(), sessionCookieName)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Nil(t, cookieNamed(rec.Result(), sessionCookieName), "unchanged sessions are not rewritten")
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	var got *SessionData
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = GetSession(r) }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "eyJpZCI6ImV2aWwifQ.c2ln"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.NotEqual(t, "evil", got.ID)
}

func TestCSRF(t *testing.T) {
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), Session, HTMX, CSRF)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	session := cookieNamed(rec.Result(), sessionCookieName)
	csrf := cookieNamed(rec.Result(), csrfCookieName)
	require.NotNil(t, session)
	require.NotNil(t, csrf)

	post := func(form url.Values, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/contato", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if header != "" {
			req.Header.Set("HX-Request", "true")
			req.Header.Set(csrfHeaderName, header)
		}
		req.AddCookie(session)
		req.AddCookie(csrf)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, post(url.Values{}, "").Code)
	assert.Equal(t, http.StatusNoContent, post(url.Values{CSRFFieldName: {csrf.Value}}, "").Code)
	assert.Equal(t, http.StatusNoContent, post(url.Values{}, csrf.Value).Code)

	bad := post(url.Values{}, "nope")
	assert.Equal(t, http.StatusForbidden, bad.Code)
	assert.Contains(t, bad.Header().Get("Content-Type"), "application/json")
}

func TestLocale(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pt.json"), []byte(`{"a":"b"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"a":"c"}`), 0o600))
	bundle, err := i18n.Load(dir, "pt", []string{"pt", "en"})
	require.NoError(t, err)

	var lang string
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { lang = Lang(r) }), Session, Locale(bundle))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "en", lang)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Header().Values("Vary"), "Accept-Language")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?hl=pt", nil))
	assert.Equal(t, "pt", lang)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?hl=xx", nil))
	assert.Equal(t, "pt", lang, "unsupported overrides fall back")
}

func TestRedirect(t *testing.T) {
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Redirect(w, r, "/imoveis/mg")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/forms/search", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/imoveis/mg", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodPost, "/forms/search", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/imoveis/mg", rec.Header().Get("HX-Redirect"))
}

func TestAssetsWithCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o600))
	h := AssetsWithCache(dir, "/assets", 24*time.Hour)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=86400")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", ClientIP(req))
	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "2.2.2.2", ClientIP(req))
}
