// @title                       Dealer Admin API
// @version                     1.0
// @description                 Back-office API for staff accounts and the dealer directory.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	_ "go.uber.org/automaxprocs"

	"github.com/dealerhub/dealer-admin/internal/api"
	"github.com/dealerhub/dealer-admin/internal/core/service"
	"github.com/dealerhub/dealer-admin/internal/infrastructure/config"
	"github.com/dealerhub/dealer-admin/internal/infrastructure/db/mongo"
	"github.com/dealerhub/dealer-admin/internal/infrastructure/db/redis"
	"github.com/dealerhub/dealer-admin/internal/infrastructure/http/handlers"
	"github.com/dealerhub/dealer-admin/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, envconfig.OsLookuper())
	stop()
	os.Exit(code)
}

// execute runs the API until ctx is cancelled and returns the process exit
// code. Deferred cleanup has completed by the time it returns.
func execute(ctx context.Context, lookuper envconfig.Lookuper) int {
	cfg, err := config.LoadWith(ctx, lookuper)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Error().Err(err).Msg("config")
		return 1
	}

	log, closeLog := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, File: cfg.Log.File})
	defer func() { _ = closeLog() }()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("dealer admin api stopped with error")
		return 1
	}
	log.Info().Msg("dealer admin api stopped gracefully")
	return 0
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	// --- Repositories ---
	users := mongo.NewUserRepository(db)
	dealers := mongo.NewDealerRepository(db)
	audit := mongo.NewAuditRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, dealers, audit); err != nil {
		return err
	}

	// --- Services ---
	tokens := service.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expire)
	limiter := redis.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.LockoutWindow)

	e := api.NewRouter(api.Services{
		Auth:    service.NewAuthService(users, tokens, limiter, log),
		Dealers: service.NewDealerService(dealers, audit, log),
		Stats:   service.NewStatsService(dealers, log),
	}, api.RouterConfig{
		Logger:    log,
		RateLimit: cfg.RateLimit,
		Health:    handlers.NewHealthDependenciesHandler(db, rdb),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("dealer admin api starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
