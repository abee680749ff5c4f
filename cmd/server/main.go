// Package main is the entry point for the FreeLanceFlow API server
//
//	@title			FreeLanceFlow API
//	@version		1.0
//	@description	Business records for freelance projects: CRUD, dashboard, payments ledger, CSV export, PDF invoices
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@schemes	http https
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"freelanceflow/internal/config"
	"freelanceflow/internal/esx"
	"freelanceflow/internal/httpx"
	"freelanceflow/internal/httpx/kit"
	"freelanceflow/internal/httpx/projects"
	"freelanceflow/internal/invoice"
	"freelanceflow/internal/logx"
	"freelanceflow/internal/mqx"
	"freelanceflow/internal/project"
	"freelanceflow/internal/redisx"
	"freelanceflow/internal/repo"
	"freelanceflow/internal/server"
	"freelanceflow/internal/storage"
	"freelanceflow/internal/storage/postgres"
	"freelanceflow/internal/storage/sqlite"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load config (env first; optional Apollo override)
	cfg, store, apClose, err := config.Load()
	if err != nil {
		panic(err)
	}
	if apClose != nil {
		defer apClose()
	}

	// Init global logger first
	logx.Init(cfg.Log.Level, cfg.Log.Format)
	mainLogger := logx.GetScope("main")

	mainLogger.Info("config loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.Server.Addr),
		zap.String("storage.backend", cfg.Storage.Backend),
		zap.String("log.level", cfg.Log.Level),
		zap.String("log.format", cfg.Log.Format),
	)

	// Open the storage backend
	adapter, pgStore, closeStore, err := openStorage(cfg)
	if err != nil {
		mainLogger.Sugar().Error("open storage error", "err", err)
		panic(err)
	}
	defer closeStore()

	// Optional deps: Redis, MQ, ES
	rdb, rclose, err := redisx.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Warn("redis init failed", "err", err)
	} else {
		defer rclose()
	}

	var publisher mqx.Publisher
	if cfg.MQ.URL != "" {
		if pub, err := mqx.NewRabbitPublisher(cfg.MQ.URL, "events"); err != nil {
			mainLogger.Sugar().Warn("mq init failed", "err", err)
		} else {
			publisher = pub
			defer func() { _ = pub.Close() }()
		}
	}

	esClient, esClose, err := esx.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Warn("es init failed", "err", err)
	} else {
		defer esClose()
	}

	// Auto-invoice: a project that lands in Paid gets its PDF written to disk.
	gen := &invoice.Generator{OutDir: cfg.Invoice.Dir}
	r := repo.New(adapter, repo.WithPaidHook(func(p project.Project) {
		if _, err := gen.Generate(p); err != nil {
			mainLogger.Sugar().Warnw("auto invoice failed", "id", p.ID, "err", err)
		}
	}))

	// Warm the cache; an unreachable store is not fatal at boot.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := r.List(warmCtx); err != nil {
		mainLogger.Sugar().Warnw("initial list failed", "err", err)
	}
	warmCancel()

	// Fiber app and routes
	app := fiber.New(fiber.Config{ErrorHandler: kit.ErrorHandler()})
	httpx.RegisterCommonMiddlewares(app)
	httpx.Register(app, r, httpx.Options{
		Providers:     projects.Providers{MQ: publisher, ES: esClient},
		RDB:           rdb,
		RateWindowSec: cfg.RateLimit.WindowSec,
		RateMax:       cfg.RateLimit.Max,
	})

	// Watch for dynamic config changes (Apollo)
	// Validators: rollback strategy for invalid config
	store.AddValidator(func(newCfg *config.Config, changed map[string]bool) error {
		if changed["pg.max_open"] || changed["pg.max_idle"] {
			if newCfg.PG.MaxIdleConns > newCfg.PG.MaxOpenConns {
				return fmt.Errorf("PG_MAX_IDLE cannot exceed PG_MAX_OPEN")
			}
		}
		return nil
	})

	store.Watch(func(newCfg *config.Config, changed map[string]bool) {
		if pgStore != nil && (changed["pg.max_open"] || changed["pg.max_idle"]) {
			pgStore.UpdatePool(newCfg.PG.MaxOpenConns, newCfg.PG.MaxIdleConns)
			mainLogger.Info("db pool updated",
				zap.Int("max_open", newCfg.PG.MaxOpenConns),
				zap.Int("max_idle", newCfg.PG.MaxIdleConns),
			)
		}
		if changed["pg.url"] || changed["storage.backend"] || changed["sqlite.path"] {
			mainLogger.Warn("storage settings changed; restart required to reconnect")
		}
		if changed["server.addr"] {
			mainLogger.Warn("server.addr changed; restart required to take effect",
				zap.String("addr", newCfg.Server.Addr),
			)
		}
		if changed["invoice.dir"] {
			gen.OutDir = newCfg.Invoice.Dir
			mainLogger.Info("invoice dir updated", zap.String("dir", newCfg.Invoice.Dir))
		}
		if changed["log.level"] || changed["log.format"] {
			logx.Init(newCfg.Log.Level, newCfg.Log.Format)
			mainLogger.Info("logger reconfigured",
				zap.String("level", newCfg.Log.Level),
				zap.String("format", newCfg.Log.Format),
			)
		}
	})

	// Graceful shutdown
	go func() {
		ln, err := server.GetListener(cfg.Server.Addr)
		if err != nil {
			mainLogger.Sugar().Errorf("listener error: %v", err)
			return
		}
		if err := app.Listener(ln); err != nil {
			mainLogger.Sugar().Infof("fiber exit: %v", err)
		}
	}()
	mainLogger.Sugar().Infof("server started on %s", cfg.Server.Addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	mainLogger.Sugar().Info("shutting down...")
	_ = app.Shutdown()
}

// openStorage opens the configured backend and runs its migration. The
// second return value is non-nil only for Postgres, which supports runtime
// pool resizing.
func openStorage(cfg *config.Config) (storage.Adapter, *postgres.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Storage.Backend {
	case "postgres":
		s, closer, err := postgres.Open(cfg)
		if err != nil {
			return nil, nil, func() {}, err
		}
		if err := s.Migrate(ctx); err != nil {
			closer()
			return nil, nil, func() {}, err
		}
		return s, s, closer, nil
	case "sqlite":
		s, closer, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, func() {}, err
		}
		if err := s.Migrate(ctx); err != nil {
			closer()
			return nil, nil, func() {}, err
		}
		return s, nil, closer, nil
	default:
		return nil, nil, func() {}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
