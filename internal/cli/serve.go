package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/typegraph/internal/api"
	"github.com/matzehuels/typegraph/pkg/pipeline"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		warm    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram HTTP API",
		Long: `Serve the diagram HTTP API.

Routes:
  GET  /healthz
  POST /api/positions
  POST /api/edges
  GET  /api/strategy?count=N
  POST /api/fit
  POST /api/render

With --warm the given model is laid out on start and again whenever the file
changes, so requests for it are answered from the cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg().Server.Addr
			}
			return c.runServe(cmd.Context(), addr, warm, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&warm, "warm", "", "model file to keep warm in the cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagFilename("warm", modelExts...)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, warm string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	defaults := c.pipelineOptions()
	padding := c.cfg().Viewport.Padding
	handler := api.NewHandler(runner, api.Options{
		Defaults: defaults,
		Padding:  &padding,
		Logger:   c.Logger,
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.Logger.Info("starting HTTP server", "addr", addr, "cache", c.cfg().Cache.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if warm != "" {
		g.Go(func() error {
			warmModel(gCtx, runner, warm, defaults)
			return watchFile(gCtx, warm, c.Logger, func() { warmModel(gCtx, runner, warm, defaults) })
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		c.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}

// warmModel lays out the model at path so later requests hit the cache.
func warmModel(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) {
	model, err := loadModel(path)
	if err != nil {
		runner.Logger.Warn("warm: load failed", "path", path, "error", err)
		return
	}
	opts.Refresh = true
	positions, err := runner.ComputePositions(ctx, model, opts)
	if err != nil {
		runner.Logger.Warn("warm: layout failed", "path", path, "error", err)
		return
	}
	runner.Logger.Info("warmed model", "path", path, "types", len(positions))
}
