package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treecontrast/internal/server"
	"github.com/matzehuels/treecontrast/pkg/cache"
	"github.com/matzehuels/treecontrast/pkg/pipeline"
	"github.com/matzehuels/treecontrast/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the treecontrast HTTP API server.

The server accepts inline tree and trait documents, computes contrasts, and
persists each computation as a retrievable run. With a [redis] section in the
config, results are cached in Redis instead of the local file cache; with a
[mongo] section, runs are persisted in MongoDB instead of process memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config, default :8080)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.toml")

	return cmd
}

// runServe assembles the cache, store, and router, then serves until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg Config) error {
	resultCache, err := c.serverCache(ctx, cfg)
	if err != nil {
		return err
	}

	runStore, err := c.serverStore(ctx, cfg)
	if err != nil {
		_ = resultCache.Close()
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runStore.Close(closeCtx)
	}()

	runner := pipeline.NewRunner(resultCache, nil, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(runner, runStore, c.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	prog := newProgress(c.Logger)
	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		prog.done("Server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// serverCache picks the result cache backend: Redis when configured,
// otherwise the local file cache.
func (c *CLI) serverCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	if cfg.Redis.Addr != "" {
		c.Logger.Info("using redis cache", "addr", cfg.Redis.Addr)
		return cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
	dir := cfg.CacheDir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// serverStore picks the run store backend: MongoDB when configured,
// otherwise in-memory.
func (c *CLI) serverStore(ctx context.Context, cfg Config) (store.Store, error) {
	if cfg.Mongo.URI != "" {
		c.Logger.Info("using mongodb store", "database", cfg.Mongo.Database)
		return store.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	}
	c.Logger.Warn("no mongo configured, runs are kept in memory")
	return store.NewMemoryStore(), nil
}
