// Command server runs the gazette ingestion integrity engine's HTTP API.
//
// With DATABASE_URL set, records persist in Postgres; without it the
// engine runs on in-memory stores, which is enough for local work against
// a single extraction session. REDIS_URL likewise switches the
// processing-job registry between redis and memory.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"gazette/internal/authtoken"
	gazettehandler "gazette/internal/gazette/handler"
	"gazette/internal/gazette/metrics"
	gazetteservice "gazette/internal/gazette/service"
	gazettestore "gazette/internal/gazette/store"
	"gazette/internal/person"
	"gazette/internal/platform/config"
	"gazette/internal/platform/httpserver"
	"gazette/internal/platform/logger"
	platformredis "gazette/internal/platform/redis"
	processinghandler "gazette/internal/processing/handler"
	processingservice "gazette/internal/processing/service"
	processingstore "gazette/internal/processing/store"
	httptransport "gazette/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var health []func() error

	var records gazettestore.RecordStore
	var persons person.Store
	serviceOpts := []gazetteservice.Option{
		gazetteservice.WithLogger(log),
		gazetteservice.WithMetrics(metrics.New()),
	}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		health = append(health, db.Ping)

		records = gazettestore.NewPostgres(db)
		persons = person.NewPostgres(db)
		serviceOpts = append(serviceOpts, gazetteservice.WithTx(gazetteservice.NewSQLTx(db)))
		log.Info("record store ready", "backend", "postgres")
	} else {
		records = gazettestore.NewInMemory()
		persons = person.NewInMemory()
		log.Warn("DATABASE_URL not set, records will not survive restarts")
	}
	serviceOpts = append(serviceOpts, gazetteservice.WithPersonStore(persons))

	var jobs processingstore.JobStore = processingstore.NewInMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		health = append(health, func() error {
			return redisClient.Health(context.Background())
		})
		jobs = processingstore.NewRedis(redisClient.Client, config.JobStatusTTL)
		log.Info("job registry ready", "backend", "redis")
	}

	engine := gazetteservice.New(records, serviceOpts...)
	processing := processingservice.New(jobs, log)

	tokens := authtoken.NewJWTService(cfg.JWTSigningKey, "gazette-engine")

	router := httptransport.NewRouter(httptransport.Deps{
		Gazette:    gazettehandler.New(engine, log, authtoken.NewMiddlewareAdapter(tokens)),
		Processing: processinghandler.New(processing, log),
		Logger:     log,
		Health:     health,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("gazette engine listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
