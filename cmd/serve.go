package cmd

import (
	"context"
	"log/slog"
	"time"

	"integral-solver/config"
	"integral-solver/server"
	"integral-solver/service/stors/cachestor"
	"integral-solver/service/stors/historystor"
	"integral-solver/solver"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const statsInterval = time.Minute

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP solve service and web page",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides api_port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.C
	if servePort > 0 {
		cfg.APIPort = servePort
	}
	ctx := cmd.Context()

	cache, err := cachestor.New(ctx, cachestor.Config{
		Backend:   cfg.Cache.Backend,
		RedisAddr: cfg.Cache.RedisAddr,
		Prefix:    cfg.Cache.Prefix,
		TTL:       cfg.Cache.TTL,
	})
	if err != nil {
		return err
	}
	var history *historystor.Repository
	if cfg.History.Enabled {
		history, err = historystor.Open(cfg.History.DBPath)
		if err != nil {
			return multierr.Append(err, cache.Close())
		}
	}

	srv := server.New(server.Options{
		Config:  cfg,
		Solver:  solver.New(solver.WithMaxDepth(cfg.Solver.MaxDepth)),
		Cache:   cache,
		History: history,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx) })
	g.Go(func() error {
		reportStats(gctx, cache, history)
		return nil
	})
	err = g.Wait()

	err = multierr.Append(err, cache.Close())
	if history != nil {
		err = multierr.Append(err, history.Close())
	}
	return err
}

func reportStats(ctx context.Context, cache cachestor.SolveCache, history *historystor.Repository) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cs := cache.Stats()
		attrs := []any{"backend", cache.Backend(), "hits", cs.Hits, "misses", cs.Misses, "hit_rate", cs.HitRate}
		if history != nil {
			if counts, err := history.CountByMethod(); err == nil {
				attrs = append(attrs, "methods", counts)
			}
		}
		slog.Info("solve stats", attrs...)
	}
}
