package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"mediafolder/config"
	"mediafolder/jobs"
	"mediafolder/routes"
	"mediafolder/store"
	"mediafolder/store/mongostore"
	"mediafolder/store/sqlitestore"
	"mediafolder/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	cfg.LogConfig(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := config.CreateContext(10 * time.Second)
	s, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	defer func() {
		closeCtx, closeCancel := config.CreateContext(5 * time.Second)
		defer closeCancel()
		if err := s.Close(closeCtx); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	clock := clockwork.NewRealClock()
	container := routes.NewServiceContainer(s, clock, cfg)
	router := routes.NewRouter(container)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	if cfg.OrphanCleanupInterval > 0 {
		cleaner := jobs.NewOrphanCleaner(s, clock, cfg.OrphanCleanupInterval, cfg.OrphanCleanupGrace)
		g.Go(func() error {
			cleaner.Run(gctx)
			return nil
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("starting media folder server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := config.CreateContext(cfg.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.DatabaseName)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		return s, nil
	default:
		s, err := sqlitestore.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("opened sqlite store", "path", s.Path())
		return s, nil
	}
}
