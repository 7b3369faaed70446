package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/storage"
	"github.com/rewired-gh/deadredux/internal/telegram"
	"github.com/rewired-gh/deadredux/internal/web"
)

func newServeCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the daily show site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, app)
		},
	}
}

func runServe(ctx context.Context, app *appContext) error {
	cfg := app.config

	store, err := storage.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	svc, cat, err := app.service(app.relistenClient(), store)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d shows from %s", cat.Len(), cfg.Catalog.Path)

	srv, err := web.NewServer(svc)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening on %s (today: %s)", cfg.Server.Addr, svc.Today())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, cleaning up...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return pruneLoop(gctx, store, cfg.Storage.PruneInterval, cfg.Storage.DetailsTTL)
	})

	if cfg.Telegram.Enabled {
		client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Error("Failed to initialize Telegram client: %v", err)
		} else {
			logger.Info("Telegram client initialized successfully")
			announcer := telegram.NewAnnouncer(client, store, svc, app.links().Page, cfg.Telegram.CheckInterval)
			g.Go(func() error {
				return announcer.Run(gctx)
			})
		}
	} else {
		logger.Debug("Telegram announcements disabled")
	}

	err = g.Wait()
	logger.Info("Service stopped")
	return err
}

// pruneLoop drops cached details older than ttl every interval.
func pruneLoop(ctx context.Context, store *storage.Storage, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			removed, err := store.PruneDetails(ctx, now.Add(-ttl))
			if err != nil {
				logger.Warn("Failed to prune details cache: %v", err)
				continue
			}
			if removed > 0 {
				logger.Debug("Pruned %d stale details rows", removed)
			}
		}
	}
}
