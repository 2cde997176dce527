// Package config loads the web server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"meusensia.com.br/sensia-web/internal/forms"
)

// Prefix is prepended to every variable name.
const Prefix = "SENSIA_WEB_"

// Config holds the server settings.
type Config struct {
	Port string
	Env  string
	Dev  bool

	ContentBaseURL string
	ListingsIndex  string
	StoresIndex    string
	TaxonomyPath   string
	IndexPageSize  int
	CardsPageSize  int
	SessionTTL     time.Duration

	CMSBaseURL string
	ContentDir string

	ContactEndpoint      string
	ContactRatePerMinute int

	GTMContainerID    string
	FiltersFile       string
	SessionSigningKey string

	Filters forms.Catalog
}

// ValidationError lists every invalid setting.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which follows os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	env := func(name string) string {
		v, _ := lookup(Prefix + name)
		return strings.TrimSpace(v)
	}
	verr := &ValidationError{}

	cfg := Config{
		Port:                 env("PORT"),
		Env:                  strings.ToLower(env("ENV")),
		ContentBaseURL:       strings.TrimRight(env("CONTENT_BASE_URL"), "/"),
		ListingsIndex:        orDefault(env("LISTINGS_INDEX"), "/imovel/query-index.json"),
		StoresIndex:          orDefault(env("STORES_INDEX"), "/query-index.json"),
		TaxonomyPath:         orDefault(env("TAXONOMY_PATH"), "/taxonomy.json"),
		CMSBaseURL:           env("CMS_BASE_URL"),
		ContentDir:           orDefault(env("CONTENT_DIR"), "content"),
		ContactEndpoint:      env("CONTACT_ENDPOINT"),
		GTMContainerID:       env("GTM_CONTAINER_ID"),
		FiltersFile:          env("FILTERS_FILE"),
		SessionSigningKey:    env("SESSION_SIGNING_KEY"),
		IndexPageSize:        intSetting(verr, "INDEX_PAGE_SIZE", env("INDEX_PAGE_SIZE"), 500),
		CardsPageSize:        intSetting(verr, "CARDS_PAGE_SIZE", env("CARDS_PAGE_SIZE"), 6),
		ContactRatePerMinute: intSetting(verr, "CONTACT_RATE_PER_MINUTE", env("CONTACT_RATE_PER_MINUTE"), 5),
	}
	if cfg.Port == "" {
		// Cloud Run sets PORT.
		cfg.Port, _ = lookup("PORT")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	dev := env("DEV")
	if dev == "" {
		dev, _ = lookup("DEV")
	}
	cfg.Dev = dev != "" && dev != "0" && !strings.EqualFold(dev, "false")

	cfg.SessionTTL = 10 * time.Minute
	if raw := env("SESSION_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			verr.add("%sSESSION_TTL: invalid duration %q", Prefix, raw)
		} else {
			cfg.SessionTTL = d
		}
	}

	if n, err := strconv.Atoi(cfg.Port); err != nil || n < 1 || n > 65535 {
		verr.add("port must be between 1 and 65535, got %q", cfg.Port)
	}
	if cfg.IndexPageSize < 1 {
		verr.add("%sINDEX_PAGE_SIZE must be positive, got %d", Prefix, cfg.IndexPageSize)
	}
	if cfg.CardsPageSize < 0 {
		verr.add("%sCARDS_PAGE_SIZE must not be negative, got %d", Prefix, cfg.CardsPageSize)
	}
	if cfg.Env == "prod" && cfg.ContentBaseURL == "" {
		verr.add("%sCONTENT_BASE_URL is required in prod", Prefix)
	}
	if cfg.Env == "prod" && cfg.SessionSigningKey == "" {
		verr.add("%sSESSION_SIGNING_KEY is required in prod", Prefix)
	}

	cfg.Filters = forms.DefaultCatalog()
	if cfg.FiltersFile != "" {
		f, err := os.Open(cfg.FiltersFile)
		if err != nil {
			verr.add("%sFILTERS_FILE: %v", Prefix, err)
		} else {
			catalog, err := forms.LoadCatalog(f)
			f.Close()
			if err != nil {
				verr.add("%sFILTERS_FILE: %v", Prefix, err)
			} else {
				cfg.Filters = catalog
			}
		}
	}

	if len(verr.Problems) > 0 {
		return cfg, verr
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// Production reports whether the server runs in the prod environment.
func (c Config) Production() bool { return c.Env == "prod" }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intSetting(verr *ValidationError, name, raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.add("%s%s: invalid integer %q", Prefix, name, raw)
		return def
	}
	return n
}
