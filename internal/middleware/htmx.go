package middleware

import (
	"context"
	"net/http"
	"strings"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		if is {
			ctx = context.WithValue(ctx, ctxKeyHXTarget, strings.TrimPrefix(r.Header.Get("HX-Target"), "#"))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Redirect sends the client to url. htmx requests get HX-Redirect so the
// whole page navigates instead of swapping the target.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// PushURL asks htmx to record url in the browser history.
func PushURL(w http.ResponseWriter, url string) {
	w.Header().Set("HX-Push-Url", url)
}
