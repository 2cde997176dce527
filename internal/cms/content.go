package cms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Page is a localized institutional page.
type Page struct {
	Slug        string
	Lang        string
	Title       string
	Summary     string
	Body        string
	Format      string // "markdown" (default) or "html"
	UpdatedAt   time.Time
	Description string

	// Filled by Render.
	HTML template.HTML
	TOC  []Heading
	ETag string
}

// Heading is one entry of a page table of contents.
type Heading struct {
	ID    string
	Text  string
	Level int
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Lang        string `yaml:"lang"`
	Format      string `yaml:"format"`
	UpdatedAt   string `yaml:"updated_at"`
	Description string `yaml:"description"`
}

const defaultFormat = "markdown"

// GetPage returns the rendered page for slug, consulting the remote CMS when
// configured and falling back to local markdown.
func (c *Client) GetPage(ctx context.Context, slug, lang string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	lang = normalizeLang(lang)

	key := lang + "|" + slug
	if p, ok := c.cached(key); ok {
		return p, nil
	}
	p, err := c.fetchPage(ctx, slug, lang)
	if err != nil {
		return Page{}, err
	}
	if err := p.Render(); err != nil {
		return Page{}, err
	}
	c.store(key, p)
	return p.clone(), nil
}

func (c *Client) fetchPage(ctx context.Context, slug, lang string) (Page, error) {
	if c.baseURL != "" {
		p, err := c.fetchRemote(ctx, slug, lang)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("cms: remote page unavailable, using local content",
				zap.String("slug", slug), zap.String("lang", lang), zap.Error(err))
		}
	}
	return readLocal(c.contentDir, slug, lang)
}

func (c *Client) fetchRemote(ctx context.Context, slug, lang string) (Page, error) {
	endpoint, err := url.JoinPath(c.baseURL, "content", "pages", slug)
	if err != nil {
		return Page{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, err
	}
	q := req.URL.Query()
	q.Set("lang", lang)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Page{}, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return Page{}, fmt.Errorf("cms: page remote status %d", resp.StatusCode)
	}

	var payload struct {
		Slug        string    `json:"slug"`
		Lang        string    `json:"lang"`
		Title       string    `json:"title"`
		Summary     string    `json:"summary"`
		Body        string    `json:"body"`
		Format      string    `json:"format"`
		UpdatedAt   time.Time `json:"updated_at"`
		Description string    `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Page{}, err
	}
	if strings.TrimSpace(payload.Body) == "" {
		return Page{}, fmt.Errorf("cms: empty body for %s", slug)
	}
	return Page{
		Slug:        firstNonEmpty(payload.Slug, slug),
		Lang:        firstNonEmpty(payload.Lang, lang),
		Title:       firstNonEmpty(payload.Title, prettifySlug(slug)),
		Summary:     payload.Summary,
		Body:        payload.Body,
		Format:      firstNonEmpty(payload.Format, defaultFormat),
		UpdatedAt:   payload.UpdatedAt,
		Description: payload.Description,
	}, nil
}

// readLocal tries lang, then pt, then en.
func readLocal(dir, slug, lang string) (Page, error) {
	priority := []string{lang}
	for _, l := range []string{"pt", "en"} {
		if l != lang {
			priority = append(priority, l)
		}
	}
	for _, candidate := range priority {
		p, err := readMarkdown(dir, slug, candidate)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return Page{}, err
	}
	return Page{}, ErrNotFound
}

func readMarkdown(dir, slug, lang string) (Page, error) {
	file := filepath.Join(dir, "pages", lang, slug+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}
	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}
	p := Page{
		Slug:        slug,
		Lang:        firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:       firstNonEmpty(strings.TrimSpace(front.Title), prettifySlug(slug)),
		Summary:     strings.TrimSpace(front.Summary),
		Body:        body,
		Format:      firstNonEmpty(strings.TrimSpace(front.Format), defaultFormat),
		UpdatedAt:   parseDate(front.UpdatedAt),
		Description: strings.TrimSpace(front.Description),
	}
	if p.UpdatedAt.IsZero() {
		if info, err := os.Stat(file); err == nil {
			p.UpdatedAt = info.ModTime().UTC().Truncate(time.Second)
		}
	}
	return p, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func etag(body string) string {
	sum := sha256.Sum256([]byte(body))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func (p Page) clone() Page {
	cp := p
	cp.TOC = append([]Heading(nil), p.TOC...)
	return cp
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		r := []rune(part)
		parts[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
