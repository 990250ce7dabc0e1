package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/mna11/ReadMe3D/internal/adapters/cache"
	"github.com/mna11/ReadMe3D/internal/adapters/github"
	adapterHTTP "github.com/mna11/ReadMe3D/internal/adapters/handler/http"
	"github.com/mna11/ReadMe3D/internal/adapters/metrics"
	"github.com/mna11/ReadMe3D/internal/adapters/raster"
	"github.com/mna11/ReadMe3D/internal/adapters/repository"
	"github.com/mna11/ReadMe3D/internal/config"
	"github.com/mna11/ReadMe3D/internal/core/city"
	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/frame"
	"github.com/mna11/ReadMe3D/internal/core/services"
	"github.com/mna11/ReadMe3D/internal/core/workers"
)

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	var db *sqlx.DB
	var store domain.SnapshotRepository = repository.NewInMemorySnapshotRepository()
	if cfg.DB.Enabled() {
		log.Println("Connecting to database...")

		db, err = sqlx.Connect("pgx", cfg.DB.DSN())
		if err != nil {
			log.Fatalf("Critical: Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		pg := repository.NewPostgresSnapshotRepository(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Critical: Failed to prepare schema: %v", err)
		}
		store = pg

		log.Println("Database connected successfully.")
	} else {
		log.Println("DB_NAME not set, snapshots are kept in memory.")
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = cache.NewRedisClient(context.Background(), cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("[CACHE] Redis unavailable, running without cache and rate limiting: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	m := metrics.NewMetrics()

	var source domain.ActivitySource = store
	var archiving domain.ActivitySource
	if cfg.GitHub.Token != "" {
		opts := []github.Option{github.WithTimeout(cfg.GitHub.Timeout)}
		if cfg.GitHub.Endpoint != "" {
			opts = append(opts, github.WithEndpoint(cfg.GitHub.Endpoint))
		}
		gh, err := github.New(cfg.GitHub.Token, opts...)
		if err != nil {
			log.Fatalf("Critical: %v", err)
		}
		archiving = repository.NewArchivingSource(gh, store)
		source = archiving
	} else {
		log.Println("[SOURCE] GITHUB_TOKEN not set, serving pushed snapshots only.")
	}

	var cached *repository.CachedActivitySource
	if rdb != nil {
		cached = repository.NewCachedActivitySource(source, rdb, cfg.CacheTTL)
		cached.OnResult = m.CacheResult
		source = cached
	}

	renderer, err := newRenderer(cfg.Render)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	cityOpts := services.CityOptions{
		PadMissing: cfg.Render.PadMissing,
		Title:      cfg.Render.Title,
		PNG:        raster.NewEncoder(cfg.Render.PNGScale),
		Recorder:   m,
	}
	if cached != nil {
		cityOpts.Invalidator = cached
	}
	citySvc := services.NewCityService(source, store, renderer, cityOpts)

	var tokenService *services.TokenService
	if cfg.JWTSecret != "" {
		tokenService = services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenDuration)
	} else {
		log.Println("JWT_SECRET not set, snapshot ingest is disabled.")
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if archiving != nil && len(cfg.RefreshUsers) > 0 {
		worker := workers.NewRefreshWorker(archiving, cfg.RefreshUsers, cfg.RefreshInterval).WithRecorder(m)
		if cached != nil {
			worker = worker.WithInvalidator(cached)
		}
		worker.Start(workerCtx)
		if cfg.RefreshInterval <= 0 {
			worker.EnqueueAll()
		}
	}

	deps := adapterHTTP.RouterDependencies{
		CityHandler:     adapterHTTP.NewCityHandler(citySvc),
		SnapshotHandler: adapterHTTP.NewSnapshotHandler(citySvc),
		TokenService:    tokenService,
		Metrics:         m,
		Redis:           rdb,
		RateLimit:       cfg.RateLimit,
		RateWindow:      cfg.RateWindow,
		StartTime:       startTime,
	}
	if db != nil {
		deps.DB = db
	}
	router := adapterHTTP.NewRouter(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("ReadMe3D city service running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}

func newRenderer(cfg config.Render) (*city.Renderer, error) {
	return city.NewRenderer(cfg.SceneConfig(), frame.DefaultConfig(), city.SeededRand(cfg.Seed))
}
