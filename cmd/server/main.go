package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/config"
	"github.com/maxviazov/pokemon-battle-service/internal/handler"
	"github.com/maxviazov/pokemon-battle-service/internal/logger"
	"github.com/maxviazov/pokemon-battle-service/internal/metrics"
	"github.com/maxviazov/pokemon-battle-service/internal/middleware"
	"github.com/maxviazov/pokemon-battle-service/internal/repository/memory"
	"github.com/maxviazov/pokemon-battle-service/internal/scheduler"
	"github.com/maxviazov/pokemon-battle-service/internal/seed"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
)

func main() {
	// .env is optional; real environment variables win
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("❌ .env loading failed: %v", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err != nil {
		path = ""
	}

	// Load application config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}
	appLogger.Info().Str("config", path).Msg("Config loaded successfully")

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("service stopped with error")
	}
	appLogger.Info().Msg("👋 Service stopped")
}

func run(cfg *config.Config, appLogger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := memory.NewStore(appLogger)
	defer store.Close()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Expiry:   cfg.JWT.Expiry(),
	})
	if err != nil {
		return err
	}
	hasher := auth.NewPasswordHasher(cfg.JWT.BcryptCost)

	pokemonSvc := service.NewPokemonService(store.Pokemon, appLogger)
	trainerSvc := service.NewTrainerService(store.Trainers, store.Pokemon, appLogger)
	battleSvc := service.NewBattleService(store.Battles, store.Trainers, store.Pokemon, appLogger)
	authSvc := service.NewAuthService(store.Users, tokens, hasher, appLogger)

	if cfg.Seed.Enabled {
		if _, err := seed.Load(ctx, seed.Deps{
			Pokemon:  pokemonSvc,
			Trainers: trainerSvc,
			Battles:  store.Battles,
			Users:    store.Users,
			Hasher:   hasher,
		}, seed.Credentials{
			AdminPassword:   cfg.Seed.AdminPassword,
			TrainerPassword: cfg.Seed.TrainerPassword,
		}, appLogger); err != nil {
			return err
		}
	}

	endpoints := middleware.NewCollector("endpoint-statistics", middleware.EndpointKey, cfg.Monitoring.ReportEvery, appLogger)
	actions := middleware.NewCollector("action-statistics", middleware.ActionKey, 0, appLogger)

	var loginLimiter *middleware.RateLimiter
	if cfg.HTTP.LoginRateLimit > 0 {
		loginLimiter = middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginBurst, appLogger)
	}

	routerCfg := handler.RouterConfig{
		CORSOrigins: cfg.HTTP.CORSOrigins,
		SlowRequest: cfg.Monitoring.SlowRequest,
		Middleware:  []gin.HandlerFunc{endpoints.Handler(), actions.Handler()},
	}
	deps := handler.Deps{
		Store:        store,
		Pokemon:      pokemonSvc,
		Trainers:     trainerSvc,
		Battles:      battleSvc,
		Auth:         authSvc,
		Tokens:       tokens,
		LoginLimiter: loginLimiter,
		Monitoring: handler.NewMonitoringHandler(endpoints, actions, handler.ServiceInfo{
			Name:      cfg.App.Name,
			Version:   cfg.App.Version,
			Env:       cfg.App.Env,
			StartedAt: time.Now().UTC(),
		}),
	}
	if cfg.Monitoring.MetricsEnabled {
		m := metrics.New()
		m.RegisterBattleSummary(battleSvc.GetSummary)
		routerCfg.Middleware = append([]gin.HandlerFunc{m.Middleware()}, routerCfg.Middleware...)
		deps.Metrics = m.Handler()
	}

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(routerCfg, deps, appLogger)

	jobs := scheduler.New(appLogger)
	if err := jobs.Add("request-statistics-report", cfg.Monitoring.ReportSchedule, func() {
		endpoints.Report(10)
		actions.Report(10)
	}); err != nil {
		return err
	}
	if loginLimiter != nil {
		if err := jobs.Add("login-limiter-cleanup", "@every 5m", func() {
			if n := loginLimiter.Cleanup(time.Now()); n > 0 {
				appLogger.Debug().Int("removed", n).Msg("idle login limiters dropped")
			}
		}); err != nil {
			return err
		}
	}
	jobs.Start()

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := jobs.Stop(shutdownCtx); err != nil {
		appLogger.Warn().Err(err).Msg("scheduler did not stop in time")
	}
	endpoints.Report(10)
	return srv.Shutdown(shutdownCtx)
}
