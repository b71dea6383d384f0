package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hhsystems1/Intakeform/internal/assets"
	"github.com/hhsystems1/Intakeform/internal/auth"
	"github.com/hhsystems1/Intakeform/internal/cache"
	"github.com/hhsystems1/Intakeform/internal/config"
	"github.com/hhsystems1/Intakeform/internal/db"
	"github.com/hhsystems1/Intakeform/internal/intake"
	"github.com/hhsystems1/Intakeform/internal/middleware"
	"github.com/hhsystems1/Intakeform/internal/notifications"
	"github.com/hhsystems1/Intakeform/internal/preview"
	"github.com/hhsystems1/Intakeform/internal/submissions"
	"github.com/hhsystems1/Intakeform/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo submissions.Repository
	if cfg.MongoURI != "" {
		client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
		defer client.Disconnect(context.Background())

		if err := db.EnsureIndexes(ctx, cols); err != nil {
			logger.Error("index creation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		repo = submissions.NewRepository(cols.Submissions)
	} else {
		logger.Info("submission archive disabled")
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if cfg.RedisURL != "" {
			logger.Info("redis connected (url)")
		} else {
			logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
		}
		defer redisCache.Close()
		cacheStore = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:    []byte(cfg.JWTSecret),
			AccessTTL: time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			Issuer:    "intakeform",
		}
	}

	deliverer, err := notifications.FromConfig(cfg, logger)
	if err != nil {
		logger.Error("delivery provider setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("delivery provider ready", slog.String("provider", cfg.DeliveryProvider))

	var confirmer submissions.Confirmer
	if brevo, ok := deliverer.(*notifications.BrevoClient); ok {
		confirmer = brevo
	}

	previews := preview.NewRegistry()
	service := submissions.NewService(submissions.Deps{
		Deliverer: deliverer,
		Route: intake.Route{
			ServiceID:  cfg.EmailJSServiceID,
			TemplateID: cfg.EmailJSTemplateID,
			PublicKey:  cfg.EmailJSPublicKey,
		},
		Previews:  previews,
		Repo:      repo,
		Confirmer: confirmer,
		Provider:  cfg.DeliveryProvider,
		Location:  cfg.Timezone,
		Log:       logger,

		MaxSessions:    cfg.MaxSessions,
		MaxAttachments: cfg.MaxAttachments,
	})
	handler := submissions.NewHandler(service, validation.New(), previews, cfg.MaxUploadBytes(), logger)

	resolver := assets.NewResolver(cfg.LogoPrimary, cfg.LogoFallback, cacheStore, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger)
	assetsHandler := assets.NewHandler(resolver)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		service.Sessions().Run(janitorCtx, cfg.SessionTTL(), time.Minute, func(n int) {
			logger.Info("sessions expired", slog.Int("count", n), slog.Int("live_previews", previews.Live()))
		})
	}()

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	window := time.Duration(cfg.RateLimitWindowSec) * time.Second
	submitLimiter := middleware.NewRateLimiter(cfg.RateLimitSubmit, window)
	sessionLimiter := middleware.NewRateLimiter(cfg.RateLimitSessions, window)

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/catalog", handler.Catalog)
		api.Get("/branding/logo", assetsHandler.Logo)
		api.Get("/previews/{handle}", handler.Preview)
		api.With(submitLimiter.Scope("submit")).Post("/intake", handler.Create)

		api.Route("/sessions", func(s chi.Router) {
			s.With(sessionLimiter.Middleware).Post("/", handler.CreateSession)
			s.Get("/{id}", handler.GetSession)
			s.Delete("/{id}", handler.DeleteSession)
			s.Put("/{id}/fields/{name}", handler.SetField)
			s.Post("/{id}/features/toggle", handler.ToggleFeature)
			s.Put("/{id}/colors/{which}", handler.SetColor)
			s.Post("/{id}/colors/{which}/picker", handler.TogglePicker)
			s.Post("/{id}/attachments", handler.AddAttachments)
			s.Delete("/{id}/attachments/{index}", handler.RemoveAttachment)
			s.With(submitLimiter.Scope("submit")).Post("/{id}/submit", handler.Submit)
			s.Post("/{id}/reset", handler.Reset)
		})

		api.With(middleware.AdminAuth(cfg.AdminAPIKeyHash, jwtManager)).Get("/admin/submissions", handler.AdminList)
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-janitorCtx.Done():
				return
			case <-ticker.C:
				submitLimiter.Sweep()
				sessionLimiter.Sweep()
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	stopJanitor()
	<-janitorDone
	service.Wait()
	logger.Info("server stopped", slog.Int("live_previews", previews.Live()))
}
