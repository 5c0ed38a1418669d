package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/dealerhub/dealer-admin/internal/infrastructure/config"
	"github.com/dealerhub/dealer-admin/internal/infrastructure/db/mongo"
	"github.com/dealerhub/dealer-admin/internal/seed"
	"github.com/dealerhub/dealer-admin/pkg/logger"
)

const seedTimeout = time.Minute

func main() {
	_ = godotenv.Load()
	os.Exit(execute(context.Background(), envconfig.OsLookuper()))
}

// execute seeds the database and returns the process exit code.
func execute(ctx context.Context, lookuper envconfig.Lookuper) int {
	ctx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()

	cfg, err := config.LoadWith(ctx, lookuper)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Error().Err(err).Msg("config")
		return 1
	}

	log, closeLog := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, File: cfg.Log.File})
	defer func() { _ = closeLog() }()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Error().Err(err).Msg("mongodb connect")
		return 1
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongo.NewUserRepository(db)
	dealers := mongo.NewDealerRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, dealers, mongo.NewAuditRepository(db)); err != nil {
		log.Error().Err(err).Msg("ensure indexes")
		return 1
	}

	if err := seed.Run(ctx, users, dealers, log); err != nil {
		log.Error().Err(err).Msg("seed failed")
		return 1
	}
	return 0
}
