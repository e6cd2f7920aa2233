package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/lborres/studyplan"
	fiberadapter "github.com/lborres/studyplan/adapters/fiber"
	pgxadapter "github.com/lborres/studyplan/adapters/pgx"
	"github.com/lborres/studyplan/internal/config"
	"github.com/lborres/studyplan/pkg/cache"
	"github.com/lborres/studyplan/pkg/crypto"
)

const shutdownTimeout = 10 * time.Second

func logFormat() string {
	format := []string{
		"${time}",
		"${status}|${latency}",
		"${ip}",
		"${method}|${path}",
		"${error}",
	}
	return strings.Join(format, "|") + "\n"
}

func serveCmd(ctx context.Context, args []string, stderr io.Writer) error {
	fs, envFile := newFlagSet("serve", stderr)
	addr := fs.String("addr", "", "listen address (overrides http.addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*envFile, true)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	app := fiber.New()
	app.Use(recoverer.New())
	if cfg.LogRequests {
		app.Use(logger.New(logger.Config{
			Format:     logFormat(),
			TimeFormat: "2006/01/02 15:04:05",
			TimeZone:   "Local",
		}))
	}

	sessionCache, closeCache, err := newSessionCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	hasher, err := crypto.NewHasher(cfg.Password.Algorithm)
	if err != nil {
		return err
	}

	sp, err := studyplan.New(studyplan.Config{
		Secret:         cfg.Secret,
		Database:       pgxadapter.New(pool),
		HTTP:           fiberadapter.New(app),
		CacheAdapter:   sessionCache,
		DisableCache:   sessionCache == nil,
		SessionConfig:  &studyplan.SessionConfig{MaxAge: cfg.Session.MaxAge, Single: cfg.Session.Single},
		PasswordHasher: hasher,
		ClientConfig:   &studyplan.CacheConfig{TTL: cfg.Client.TTL, MaxSize: cfg.Client.MaxSize},
		CookieSecure:   cfg.Session.CookieSecure,
	})
	if err != nil {
		return fmt.Errorf("could not create studyplan instance: %w", err)
	}

	go sp.Sessions.RunSweeper(ctx, cfg.Session.SweepInterval)
	go pruneClients(ctx, sp, cfg.Client.TTL)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Errorw("shutdown failed", "error", err)
		}
	}()

	log.Infow("listening", "addr", cfg.HTTPAddr, "cache", cfg.Cache.Driver)
	return app.Listen(cfg.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true})
}

// newSessionCache returns nil for the "none" driver.
func newSessionCache(cfg *config.Config) (studyplan.Cache, func(), error) {
	cacheConfig := studyplan.CacheConfig{TTL: cfg.Cache.TTL, MaxSize: cfg.Cache.MaxSize}

	switch cfg.Cache.Driver {
	case config.CacheNone:
		return nil, func() {}, nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return cache.NewRedisCache(client, cacheConfig), func() { _ = client.Close() }, nil
	default:
		return cache.NewSessionCache(cacheConfig), func() {}, nil
	}
}

// pruneClients drops idle per-browser state so abandoned clients do not
// hold their slot until the registry is full.
func pruneClients(ctx context.Context, sp *studyplan.App, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sp.Clients.Prune(); n > 0 {
				log.Infow("pruned idle clients", "count", n)
			}
		}
	}
}
