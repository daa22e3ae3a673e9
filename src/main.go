package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"campusmap/src/catalog"
	"campusmap/src/config"
	"campusmap/src/db"
	"campusmap/src/handlers"
	"campusmap/src/location"
	"campusmap/src/logger"
	"campusmap/src/token"
	"campusmap/src/types"
)

//brew install go-task/tap/go-task

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("development").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := openStore(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Error("failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := catalog.NewService(store, log)
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Reload(ctx); err != nil {
		// keep serving; clients see an empty catalog and the error in /health
		log.Warn("initial load failed", "error", err)
	}
	cancel()

	hub := location.NewHub(location.Options{
		MinDistanceMeters: cfg.LocationMinDistanceM,
		MinInterval:       cfg.LocationMinInterval,
		TTL:               cfg.LocationTTL,
	})

	server := &handlers.Server{
		Catalog:     svc,
		Hub:         hub,
		Issuer:      token.NewIssuer(cfg.SigningKey, cfg.Users(), log),
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", "addr", cfg.HTTPAddr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
}

// openStore connects the configured backend and, when SEED_FILE is set,
// writes the seed points into it.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (types.DataStore, func(), error) {
	var seed []types.PointOfInterest
	if cfg.SeedFile != "" {
		points, err := db.ReadCSV(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		seed = points
	}

	switch cfg.Store {
	case config.StoreMemory:
		return db.NewMemoryStore(seed), func() {}, nil

	case config.StoreElastic:
		es, err := db.NewElasticStore(cfg.ElasticURL, cfg.ElasticIndex, log)
		if err != nil {
			return nil, nil, err
		}
		if err := es.CreateIndexWithMapping(ctx, cfg.ElasticSchema); err != nil {
			es.Client.Stop()
			return nil, nil, err
		}
		if len(seed) > 0 {
			if err := es.SavePoints(ctx, seed); err != nil {
				es.Client.Stop()
				return nil, nil, err
			}
			log.Info("seeded points", "store", cfg.Store, "count", len(seed))
		}
		return es, es.Client.Stop, nil

	default:
		ms, err := db.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ms.Close(ctx); err != nil {
				log.StoreError("close", err)
			}
		}
		if len(seed) > 0 {
			if err := ms.SavePoints(ctx, seed); err != nil {
				closeFn()
				return nil, nil, err
			}
			log.Info("seeded points", "store", cfg.Store, "count", len(seed))
		}
		return ms, closeFn, nil
	}
}
