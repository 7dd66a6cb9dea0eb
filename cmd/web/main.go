// cmd/web/main.go
//
// Brochure site – HTTP entry point.
//
// Start-up
// --------
//
//  1. Load config (conf/.env → conf/global.yaml → BROCHURE_ env → Vault).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Open MySQL, apply the embedded schema when auto_migrate is set, and
//     log the site count as an early sanity check.
//
//  4. Build the site resolver and start its evictor.
//
//  5. Wire content, ordering, contact intake, and mail.
//
//  6. Mount routes and serve until SIGINT / SIGTERM.
//
// Request life-cycle
// ------------------
//
//	[real IP] → access log → recoverer → slash redirect → security headers → [force HTTPS] → body limit
//	  ├─ /healthz, /metrics, /media/*, theme assets
//	  ├─ /admin/api/*  basic auth → admin.API
//	  └─ public pages  site resolution → request info → pages.Handlers
//
// Large comment blocks are framed by blank "//" lines; inline comments use
// a single "//".
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/brochure/internal/admin"
	"github.com/yanizio/brochure/internal/auth"
	"github.com/yanizio/brochure/internal/config"
	"github.com/yanizio/brochure/internal/contact"
	"github.com/yanizio/brochure/internal/content"
	"github.com/yanizio/brochure/internal/csrf"
	"github.com/yanizio/brochure/internal/database"
	"github.com/yanizio/brochure/internal/logger"
	"github.com/yanizio/brochure/internal/message"
	"github.com/yanizio/brochure/internal/middleware"
	"github.com/yanizio/brochure/internal/ordering"
	"github.com/yanizio/brochure/internal/pages"
	"github.com/yanizio/brochure/internal/requestinfo"
	"github.com/yanizio/brochure/internal/server"
	"github.com/yanizio/brochure/internal/site"
	"github.com/yanizio/brochure/internal/tenant"
	"github.com/yanizio/brochure/internal/view"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		zap.S().Errorw("fatal", "err", err)
		_ = zap.S().Sync()
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
	if err != nil {
		return err
	}
	defer logOut.Sync() //nolint:errcheck

	//
	// ── 1.  Database ────────────────────────────────────────────────────
	//
	dsn, err := database.BuildDSN(cfg.Database.DSN, cfg.Database.Password)
	if err != nil {
		return err
	}
	opts := database.DefaultOptions
	opts.MaxOpenConns = cfg.Database.MaxOpenConns
	opts.MaxIdleConns = cfg.Database.MaxIdleConns
	db, err := database.OpenWithOptions(ctx, dsn, opts)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	sites := site.NewRepository(db)
	if all, err := sites.All(ctx); err == nil {
		logOut.Infow("database online", "sites", len(all))
	}

	//
	// ── 2.  Site resolver ───────────────────────────────────────────────
	//
	resolver := tenant.NewResolver(sites, tenant.Options{
		DefaultID:      cfg.Site.DefaultID,
		LocalhostAlias: cfg.Site.LocalhostAlias,
	})
	go resolver.Run(ctx)

	//
	// ── 3.  Services ────────────────────────────────────────────────────
	//
	repo := content.NewRepository(db)
	mailer := message.NewMailer(message.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		Timeout:  cfg.Mail.DialTimeout,
	})
	store := contact.NewSQLStore(db)
	intake := contact.NewIntake(store, contact.MailNotifier{Sender: mailer}, repo, cfg.Mail.FallbackTo)

	signer, err := csrf.New(cfg.Security.CSRFKey, csrf.DefaultMaxAge)
	if err != nil {
		return err
	}
	enricher, err := requestinfo.NewEnricher(cfg.Security.GeoIPDatabase)
	if err != nil {
		return err
	}
	defer enricher.Close()

	engine := view.New(view.Options{Root: cfg.Paths.Root, Theme: cfg.Site.Theme})

	//
	// ── 4.  Routes ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	if cfg.HTTP.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RedirectSlashes) // old bookmarks end in "/"
	r.Use(middleware.Security)
	if cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS(resolver))
	}
	r.Use(chimw.RequestSize(cfg.HTTP.MaxBodyBytes))

	r.Get("/healthz", healthz(db))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle(view.MediaPrefix+"*", http.StripPrefix(view.MediaPrefix,
		http.FileServer(http.Dir(filepath.Join(cfg.Paths.Root, "media")))))
	assets := "/themes/" + cfg.Site.Theme + "/assets/"
	r.Handle(assets+"*", http.StripPrefix(assets,
		http.FileServer(http.Dir(filepath.Join(cfg.Paths.Root, "themes", cfg.Site.Theme, "assets")))))

	api := admin.New(ordering.NewService(db), repo, store)
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(auth.Basic("brochure-admin", cfg.Admin.User, cfg.Admin.Password))
		api.Routes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(resolver))
		r.Use(enricher.Middleware)
		pages.New(engine, repo, intake, signer).Routes(r,
			middleware.ContactLimit(cfg.Security.ContactRateLimit, cfg.Security.ContactRateWindow))
	})

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	return server.Run(ctx, server.New(r, cfg.HTTP))
}

// healthz answers 200 while the database answers a ping.
func healthz(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.FromContext(r.Context()).Warnw("health check failed", "err", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
