package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"meusensia.com.br/sensia-web/internal/format"
	"meusensia.com.br/sensia-web/internal/observability"
)

const pagePrefix = "page_"

// templateSet holds the parsed templates. Every page gets its own clone in
// which "content" is bound to the page body, so the base layout stays shared.
type templateSet struct {
	root  *template.Template
	pages map[string]*template.Template
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			if i18nBundle == nil {
				return key
			}
			return i18nBundle.T(lang, key)
		},
		"tf": func(lang, key string, args ...any) string {
			if i18nBundle == nil {
				return key
			}
			return i18nBundle.Tf(lang, key, args...)
		},
		"price": format.Price,
		"area":  format.Area,
		"date":  format.Date,
		"dict":  dict,
	}
}

// dict builds a map from key/value pairs so partials can take several values.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

func parseTemplates() (*templateSet, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	root, err := template.New("_root").Funcs(funcMap()).ParseFiles(files...)
	if err != nil {
		return nil, err
	}
	set := &templateSet{root: root, pages: map[string]*template.Template{}}
	for _, t := range root.Templates() {
		name := t.Name()
		if !strings.HasPrefix(name, pagePrefix) {
			continue
		}
		page, err := root.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.New("content").Parse(`{{template "` + name + `" .}}`); err != nil {
			return nil, err
		}
		set.pages[strings.TrimPrefix(name, pagePrefix)] = page
	}
	return set, nil
}

// templates returns the cached set, or a fresh parse in dev mode.
func templates() (*templateSet, error) {
	if devMode {
		return parseTemplates()
	}
	if tmplCache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return tmplCache, nil
}

// renderPage executes the base layout with the page template bound to "content".
func renderPage(w http.ResponseWriter, r *http.Request, page string, data any) {
	renderPageStatus(w, r, http.StatusOK, page, data)
}

func renderPageStatus(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	set, err := templates()
	if err != nil {
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	t, ok := set.pages[page]
	if !ok {
		http.Error(w, "unknown page "+page, http.StatusInternalServerError)
		return
	}
	execute(w, r, status, t, "base", data)
}

// renderTemplate executes a single named template, typically an htmx fragment.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, name, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	set, err := templates()
	if err != nil {
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	execute(w, r, status, set.root, name, data)
}

// execute buffers the output so a failing template never leaves a half
// written page behind.
func execute(w http.ResponseWriter, r *http.Request, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		observability.FromContext(r.Context()).Error("template exec", zap.String("template", name), zap.Error(err))
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// i18nOrDefault returns the translation of key, or def when the key is missing.
func i18nOrDefault(lang, key, def string) string {
	if i18nBundle == nil {
		return def
	}
	if v := i18nBundle.T(lang, key); v != "" && v != key {
		return v
	}
	return def
}
