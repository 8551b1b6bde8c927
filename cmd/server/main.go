package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-faktury/auth"
	"github.com/diewo77/go-faktury/internal/config"
	"github.com/diewo77/go-faktury/internal/db"
	"github.com/diewo77/go-faktury/internal/policy"
	"github.com/diewo77/go-faktury/internal/registry"
	"github.com/diewo77/go-faktury/internal/services"
	"github.com/diewo77/go-faktury/internal/storage"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	auth.Configure(auth.Options{
		Secret: cfg.Auth.SessionSecret,
		TTL:    cfg.Auth.SessionTTL,
		Secure: cfg.Auth.SecureCookie,
	})
	if auth.UsingDevSecret() {
		if !cfg.App.Dev {
			log.Fatal("SESSION_SECRET must be set outside dev mode")
		}
		log.Println("Warning: using the development session secret")
	}

	dbConn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateOnlyFlag {
		if err := db.Setup(dbConn, cfg.Database, cfg.App.Migrations); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn, cfg.Auth.AllowedEmails); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Println("Seeding completed successfully")
		return
	}

	if err := db.Setup(dbConn, cfg.Database, cfg.App.Migrations); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := db.Seed(dbConn, cfg.Auth.AllowedEmails); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	auth.SetUserVerifier(policy.UserExists(dbConn))

	ctx := context.Background()
	reg, closeRegistry := newRegistry(ctx, cfg)
	defer closeRegistry()

	routerCfg := policy.NewRouterConfig(policy.Deps{
		DB: dbConn,
		Defaults: services.SettingsDefaults{
			Currency:       cfg.Billing.Currency,
			DefaultVATRate: cfg.Billing.DefaultVATRate,
			DueDays:        cfg.Billing.DueDays,
		},
		Registry: reg,
		Logos:    newLogoStore(ctx, cfg),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(dbConn, routerCfg),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (dev=%v, db=%s)", cfg.Server.Port, cfg.App.Dev, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// newRegistry builds the cached ARES client. Redis backs the cache when
// REDIS_URL is set and reachable, memory otherwise.
func newRegistry(ctx context.Context, cfg *config.Config) (registry.Registry, func()) {
	ares := registry.NewAresClient(cfg.Registry.AresURL, cfg.Registry.Timeout)
	if cfg.Redis.URL != "" {
		rc, err := registry.NewRedisCache(ctx, cfg.Redis.URL)
		if err == nil {
			log.Println("Registry cache: redis")
			return registry.NewCachedLookup(ares, rc, cfg.Registry.CacheTTL), func() { rc.Close() }
		}
		log.Printf("Redis unavailable, caching registry lookups in memory: %v", err)
	}
	return registry.NewCachedLookup(ares, registry.NewMemoryCache(), cfg.Registry.CacheTTL), func() {}
}

// newLogoStore returns MinIO when configured. Dev mode falls back to memory;
// otherwise logo upload is disabled.
func newLogoStore(ctx context.Context, cfg *config.Config) storage.LogoStore {
	if cfg.Minio.Enabled() {
		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			Secure:    cfg.Minio.Secure,
		})
		if err == nil {
			log.Printf("Logo storage: minio bucket %s", cfg.Minio.Bucket)
			return store
		}
		log.Printf("MinIO unavailable: %v", err)
	}
	if cfg.App.Dev {
		log.Println("Logo storage: memory (dev)")
		return storage.NewMemoryStore()
	}
	log.Println("Logo storage disabled")
	return nil
}
