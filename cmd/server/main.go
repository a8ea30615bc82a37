package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"tle_userdb/internal/api"
	"tle_userdb/internal/api/handler"
	"tle_userdb/internal/app/service"
	"tle_userdb/internal/app/worker"
	"tle_userdb/internal/common/security"
	"tle_userdb/internal/domain/repository"
	"tle_userdb/internal/platform/config"
	"tle_userdb/internal/platform/database"
	"tle_userdb/internal/platform/lock"
	"tle_userdb/internal/platform/logging"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logging.For("main")
	log.Info("Configuration loaded.")

	// 2. Initialize JWT
	if err := security.InitJWT(cfg.JWTKey); err != nil {
		log.WithError(err).Fatal("Refusing to start without a JWT secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize Database, or the disabled store when DB_ENABLED=false
	var (
		repos  *repository.Repositories
		pinger handler.Pinger
		conn   *database.Conn
	)
	if cfg.DBEnabled {
		var err error
		conn, err = database.Open(ctx, database.Options{
			Driver:       cfg.DBDriver,
			DSN:          cfg.DBConnStr,
			MaxOpenConns: cfg.DBMaxOpenConns,
		})
		if err != nil {
			log.WithError(err).Fatal("Could not open database")
		}
		defer conn.Close()
		if err := repository.EnsureSchema(ctx, conn); err != nil {
			log.WithError(err).Fatal("Could not create schema")
		}
		repos = repository.New(conn)
		pinger = conn
		log.WithField("driver", cfg.DBDriver).Info("Database connected.")
	} else {
		repos = repository.NewDisabled()
		log.Warn("Database disabled, every store call will fail")
	}

	// 4. Initialize Redis lock (optional)
	var locker service.Locker = lock.NopLocker{}
	if cfg.RedisAddr != "" {
		rdb, err := lock.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("Could not connect to Redis")
		}
		defer func(rdb *redis.Client) { _ = rdb.Close() }(rdb)
		locker = lock.NewRedisLocker(rdb, "tle:duel:", cfg.DuelLockTTL)
	}

	// 5. Initialize Services
	duelService := service.NewDuelService(repos.Duels, repos.Duelists, locker)
	vcService := service.NewRatedVCService(repos.RatedVCs)

	// 6. Initialize Expiry Worker
	var reconnector worker.Reconnector
	if conn != nil {
		reconnector = conn
	}
	expiryWorker := worker.NewExpiryWorker(duelService, reconnector, cfg.ExpirySweepInterval, cfg.DuelExpiry)
	if cfg.DBEnabled {
		if err := expiryWorker.Start(ctx); err != nil {
			log.WithError(err).Fatal("Could not start expiry worker")
		}
	}

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(duelService, vcService, pinger)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.APIPort).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatalf("Could not listen on %s", cfg.APIPort)
		}
	}()

	<-stop

	log.Info("Shutting down server...")
	cancel()
	if err := expiryWorker.Stop(); err != nil {
		log.WithError(err).Error("Expiry worker shutdown failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("Server shutdown failed")
	}

	log.Info("Server and worker stopped gracefully.")
}
