package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/nurpe/waste-pickup/internal/auth"
	"github.com/nurpe/waste-pickup/internal/branding"
	"github.com/nurpe/waste-pickup/internal/config"
	"github.com/nurpe/waste-pickup/internal/datasdk"
	"github.com/nurpe/waste-pickup/internal/db"
	"github.com/nurpe/waste-pickup/internal/excel"
	httphandler "github.com/nurpe/waste-pickup/internal/http"
	"github.com/nurpe/waste-pickup/internal/http/middleware"
	"github.com/nurpe/waste-pickup/internal/logger"
	"github.com/nurpe/waste-pickup/internal/pdf"
	"github.com/nurpe/waste-pickup/internal/repository"
	"github.com/nurpe/waste-pickup/internal/service"
	"github.com/nurpe/waste-pickup/internal/session"
	"github.com/nurpe/waste-pickup/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	requestRepo := repository.NewRequestRepository(database)
	store := datasdk.NewStore(requestRepo, log)

	brandingSource, err := branding.NewSource(cfg.Branding.File, log)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Branding.File).Msg("failed to load branding")
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init templates")
	}

	registry := session.NewRegistry(store, brandingSource, renderer, log, session.Options{
		IdleTimeout: cfg.Session.IdleTimeout,
		Dashboard: service.DashboardOptions{
			MaxRequests: cfg.Requests.MaxRequests,
			BannerTTL:   cfg.Requests.BannerTTL,
			Location:    cfg.Location,
		},
		CheckOrigin: checkOrigin(cfg),
	})
	if err := registry.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule session jobs")
	}
	defer registry.Stop()

	reportService := service.NewReportService(excel.NewGenerator(), pdf.NewGenerator())

	tokenParser := auth.NewParser(cfg.Session.Secret, cfg.Session.IdleTimeout)
	handler := httphandler.NewHandler(renderer, reportService, log)
	sessionMiddleware := middleware.Session(registry, tokenParser, middleware.CookieOptions{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.IdleTimeout,
		Secure: !cfg.IsDevelopment(),
	})
	router := httphandler.NewRouter(handler, sessionMiddleware, cfg.Environment, cfg.HTTP.CORSOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("db_driver", cfg.DB.Driver).Str("timezone", cfg.Timezone).Msg("starting waste pickup service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		registry.Stop()
		os.Exit(1)
	}
}

// checkOrigin accepts same-host websocket upgrades plus the configured CORS origins.
func checkOrigin(cfg *config.Config) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(cfg.HTTP.CORSOrigins))
	for _, origin := range cfg.HTTP.CORSOrigins {
		allowed[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || cfg.IsDevelopment() {
			return true
		}
		if allowed[origin] {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
