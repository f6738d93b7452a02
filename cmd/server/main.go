package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/vitrii/agenda/internal/config"
	"github.com/vitrii/agenda/internal/database"
	"github.com/vitrii/agenda/internal/handler"
	"github.com/vitrii/agenda/internal/logger"
	"github.com/vitrii/agenda/internal/middleware"
	"github.com/vitrii/agenda/internal/queue"
	"github.com/vitrii/agenda/internal/repository"
	"github.com/vitrii/agenda/internal/repository/memstore"
	"github.com/vitrii/agenda/internal/router"
	"github.com/vitrii/agenda/internal/service"
)

const serviceName = "vitrii-agenda"

type advertiserStore interface {
	service.AdvertiserStore
	service.AdvertiserRegistry
}

type stores struct {
	advertisers advertiserStore
	events      service.EventStore
	waitlist    service.WaitlistStore
	db          *sql.DB
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		mem := memstore.New()
		st := stores{advertisers: mem.Advertisers(), events: mem.Events(), waitlist: mem.Waitlist()}
		if cfg.Demo.AdvertiserUserID != 0 {
			adv, _, err := service.EnsureAdvertiser(ctx, st.advertisers, cfg.Demo.AdvertiserUserID, cfg.Demo.AdvertiserName)
			if err != nil {
				return stores{}, err
			}
			log.Info().Uint64("advertiser_id", adv.ID).Uint64("user_id", adv.UserID).Msg("demo advertiser provisioned")
		}
		return st, nil
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return stores{}, err
	}
	if cfg.DB.AutoMigrate {
		if err := database.MigrateUp(ctx, db, log.Logger); err != nil {
			_ = db.Close()
			return stores{}, err
		}
	}
	events := repository.NewEventRepo(db)
	return stores{
		advertisers: repository.NewAdvertiserRepo(db),
		events:      events,
		waitlist:    repository.NewWaitlistRepo(db, events),
		db:          db,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger.Init(serviceName, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	if st.db != nil {
		defer st.db.Close()
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn().Str("addr", cfg.Redis.Address()).Msg("redis unavailable, cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb, "anuncianteId", log.Logger)
	limiter := middleware.NewTokenBucket(cfg.RateLimit, rdb, log.Logger)

	opts := []service.Option{
		service.WithLogger(log.Logger),
		service.WithCacheInvalidator(cache),
	}
	if cfg.Notify.RabbitMQURL != "" {
		opts = append(opts, service.WithNotifier(queue.NewPublisher(cfg.Notify.RabbitMQURL, cfg.Notify.Queue, log.Logger)))
		if cfg.Notify.RunConsumer {
			consumer := queue.NewConsumer(cfg.Notify.RabbitMQURL, cfg.Notify.Queue, cfg.Notify.ConsumerLogFile, log.Logger)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("decision consumer stopped")
				}
			}()
		}
	} else {
		log.Info().Msg("RABBITMQ_URL not set, decision notifications disabled")
	}
	svc := service.New(st.advertisers, st.events, st.waitlist, opts...)

	e := echo.New()
	router.Setup(e, log.Logger, cfg.JWTSecret)
	router.RegisterRoutes(e)
	router.RegisterEvents(e, handler.NewEventHandler(svc, log.Logger), cache)
	router.RegisterWaitlist(e, handler.NewWaitlistHandler(svc, log.Logger), limiter)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
