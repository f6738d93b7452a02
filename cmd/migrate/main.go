// Command migrate applies or rolls back the MySQL schema and can provision
// the demo advertiser.
//
//	migrate            create tables
//	migrate -down      drop tables
//	migrate -seed      create tables and the demo advertiser
package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vitrii/agenda/internal/config"
	"github.com/vitrii/agenda/internal/database"
	"github.com/vitrii/agenda/internal/logger"
	"github.com/vitrii/agenda/internal/repository"
	"github.com/vitrii/agenda/internal/service"
	"github.com/vitrii/agenda/internal/utils"
)

func main() {
	down := flag.Bool("down", false, "drop the schema instead of creating it")
	seed := flag.Bool("seed", false, "provision the demo advertiser after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger.Init("vitrii-agenda-migrate", cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MySQL")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *down {
		if err := database.MigrateDown(ctx, db, log.Logger); err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
		return
	}
	if err := database.MigrateUp(ctx, db, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if !*seed {
		return
	}

	adv, created, err := service.EnsureAdvertiser(ctx, repository.NewAdvertiserRepo(db), cfg.Demo.AdvertiserUserID, cfg.Demo.AdvertiserName)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Uint64("advertiser_id", adv.ID).Uint64("user_id", adv.UserID).Bool("created", created).Msg("demo advertiser ready")

	if cfg.JWTSecret != "" {
		tok, err := utils.NewAccessToken(cfg.JWTSecret, adv.UserID, cfg.AccessTokenTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to sign demo token")
		}
		log.Info().Str("token", tok.Token).Time("expires_at", tok.Exp).Msg("demo owner bearer token")
	}
}
