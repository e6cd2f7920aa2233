// Command studyplan runs the study plan web app and its maintenance tasks.
//
//	studyplan serve
//	studyplan migrate up|down|version
//	studyplan seed -file catalog.yaml
//	studyplan sweep
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3/log"
	"github.com/jackc/pgx/v5/pgxpool"

	pgxadapter "github.com/lborres/studyplan/adapters/pgx"
	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/internal/config"
	"github.com/lborres/studyplan/services"
)

var (
	errUsage               = errors.New("usage: studyplan serve | migrate up|down|version | seed -file PATH | sweep")
	errDatabaseURLRequired = errors.New("database.url is required (STUDYPLAN_DATABASE_URL)")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("studyplan: %v", err)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "serve":
		return serveCmd(ctx, args[1:], stderr)
	case "migrate":
		return migrateCmd(args[1:], stderr)
	case "seed":
		return seedCmd(ctx, args[1:], stderr)
	case "sweep":
		return sweepCmd(ctx, args[1:], stderr)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

// newFlagSet returns a FlagSet with the -env flag every command shares.
func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", ".env", "optional dotenv file")
	return fs, envFile
}

func loadConfig(envFile string, needDatabase bool) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if needDatabase && cfg.DatabaseURL == "" {
		return nil, errDatabaseURLRequired
	}
	return cfg, nil
}

func openPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return pool, nil
}

func migrateCmd(args []string, stderr io.Writer) error {
	fs, envFile := newFlagSet("migrate", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*envFile, true)
	if err != nil {
		return err
	}

	switch fs.Arg(0) {
	case "up":
		if err := pgxadapter.MigrateUp(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	case "down":
		if err := pgxadapter.MigrateDown(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	case "version":
	default:
		return errUsage
	}

	version, dirty, err := pgxadapter.MigrateVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	log.Infow("schema version", "version", version, "dirty", dirty)
	return nil
}

func seedCmd(ctx context.Context, args []string, stderr io.Writer) error {
	fs, envFile := newFlagSet("seed", stderr)
	file := fs.String("file", "", "catalog YAML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errUsage
	}
	cfg, err := loadConfig(*envFile, true)
	if err != nil {
		return err
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	stats, err := services.NewCatalogService(pgxadapter.New(pool)).Import(ctx, f)
	if err != nil {
		return err
	}
	log.Infow("catalog imported", "file", *file, "subjects", stats.Subjects, "topics", stats.Topics)
	return nil
}

func sweepCmd(ctx context.Context, args []string, stderr io.Writer) error {
	fs, envFile := newFlagSet("sweep", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*envFile, true)
	if err != nil {
		return err
	}

	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessions := services.NewSessionManager(core.SessionConfig{MaxAge: cfg.Session.MaxAge}, pgxadapter.New(pool), nil)
	n, err := sessions.Sweep(ctx)
	if err != nil {
		return err
	}
	log.Infow("swept expired sessions", "count", n)
	return nil
}
