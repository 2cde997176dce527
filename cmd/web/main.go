package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"meusensia.com.br/sensia-web/internal/cms"
	"meusensia.com.br/sensia-web/internal/config"
	"meusensia.com.br/sensia-web/internal/contact"
	"meusensia.com.br/sensia-web/internal/forms"
	handlersPkg "meusensia.com.br/sensia-web/internal/handlers"
	"meusensia.com.br/sensia-web/internal/i18n"
	mw "meusensia.com.br/sensia-web/internal/middleware"
	"meusensia.com.br/sensia-web/internal/observability"
	"meusensia.com.br/sensia-web/internal/site"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	localesDir   = "locales"
	// devMode is set in main() from SENSIA_WEB_DEV (preferred) or DEV (fallback)
	devMode    bool
	tmplCache  *templateSet
	i18nBundle *i18n.Bundle
)

// app carries the dependencies shared by the handlers.
type app struct {
	logger    *zap.Logger
	sites     *site.Manager
	contact   *contact.Service
	cms       *cms.Client
	catalog   forms.Catalog
	analytics handlersPkg.Analytics
	cardsPage int
}

func newApp(cfg config.Config, logger *zap.Logger) *app {
	logger = observability.OrNop(logger)
	var submitter contact.Submitter
	if cfg.ContactEndpoint != "" {
		submitter = contact.NewHTTPSubmitter(cfg.ContactEndpoint)
	}
	return &app{
		logger: logger,
		sites: site.NewManager(site.Options{
			BaseURL:       cfg.ContentBaseURL,
			ListingsIndex: cfg.ListingsIndex,
			StoresIndex:   cfg.StoresIndex,
			TaxonomyPath:  cfg.TaxonomyPath,
			IndexPageSize: cfg.IndexPageSize,
			Logger:        logger.Named("site"),
		}, cfg.SessionTTL),
		contact: contact.NewService(submitter, cfg.ContactRatePerMinute, logger.Named("contact")),
		cms: cms.NewClient(cfg.CMSBaseURL,
			cms.WithContentDir(cfg.ContentDir),
			cms.WithLogger(logger.Named("cms")),
		),
		catalog:   cfg.Filters,
		analytics: handlersPkg.NewAnalytics(cfg.GTMContainerID, cfg.Production()),
		cardsPage: cfg.CardsPageSize,
	}
}

func main() {
	var (
		tmplPath string
		pubPath  string
		locPath  string
	)
	flag.StringVar(&tmplPath, "templates", templatesDir, "templates directory")
	flag.StringVar(&pubPath, "public", publicDir, "public assets directory")
	flag.StringVar(&locPath, "locales", localesDir, "locales directory")
	flag.Parse()

	templatesDir = tmplPath
	publicDir = pubPath
	localesDir = locPath

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	devMode = cfg.Dev
	if mw.ConfigureSessions(cfg.SessionSigningKey, cfg.Production()) {
		logger.Warn("session signing key not configured; cookies will not survive a restart")
	}

	i18nBundle, err = i18n.Load(localesDir, i18n.DefaultLang, []string{i18n.DefaultLang, "en"})
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}

	if !devMode {
		// Parse templates once in production
		tc, err := parseTemplates()
		if err != nil {
			logger.Fatal("parse templates", zap.Error(err))
		}
		tmplCache = tc
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(newApp(cfg, logger)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.Bool("dev", devMode),
			zap.String("content_base_url", cfg.ContentBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newRouter wires middleware and routes. Tests build the same router.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Static assets under /assets/
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), "/assets/", 24*time.Hour))

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session)
		r.Use(mw.CSRF)
		r.Use(mw.Locale(i18nBundle))
		r.Use(a.sites.Middleware)

		// Listings
		r.Get("/", a.HomeHandler)
		r.Get("/imoveis", a.ListingsHandler)
		r.Get("/imoveis/{state}", a.ListingsHandler)
		r.Get("/imoveis/{state}/{city}", a.ListingsHandler)
		r.Get("/resultados", a.ResultsHandler)
		r.Get("/cards/more", a.CardsMoreFrag)

		// Forms
		r.Get("/forms/cities", a.CityOptionsFrag)
		r.Get("/forms/max-price", a.MaxPriceOptionsFrag)
		r.Post("/forms/search", a.SearchSubmitHandler)
		r.Post("/forms/filters", a.FiltersSubmitHandler)

		// Stores
		r.Get("/lojas", a.StoresHandler)
		r.Get("/lojas/{state}", a.StoresHandler)
		r.Get("/lojas/{state}/{city}", a.StoresHandler)
		r.Get("/forms/store-cities", a.StoreCityOptionsFrag)
		r.Post("/forms/stores", a.StoreSearchSubmitHandler)

		// Property pages, including author URLs
		r.Get("/imovel/*", a.PropertyHandler)
		r.Get("/content/meusensia/imovel/*", a.PropertyHandler)

		// Contact
		r.Get("/contato", a.ContactHandler)
		r.Post("/contato", a.ContactSubmitHandler)

		// Institutional content
		r.Get("/institucional/{slug}", a.ContentHandler)

		r.NotFound(a.NotFoundHandler)
	})
	return r
}
