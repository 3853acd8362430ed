package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typegraph/pkg/cache"
	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/observability"
	"github.com/matzehuels/typegraph/pkg/refs"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete positions → analyze → render pipeline.
func (r *Runner) Execute(ctx context.Context, model schema.Model, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	model, err := PrepareModel(model, opts)
	if err != nil {
		return nil, err
	}
	hash, err := HashModel(model)
	if err != nil {
		return nil, err
	}
	result := &Result{Model: model, ModelHash: hash}
	result.Stats.TypeCount = model.Len()

	// Stage 1: Positions
	start := time.Now()
	positions, hit, err := r.computePositions(ctx, model, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	result.Positions = positions
	result.Stats.PositionTime = time.Since(start)
	result.CacheInfo.PositionsHit = hit

	r.Logger.Info("computed positions",
		"types", model.Len(),
		"cached", hit,
		"duration", result.Stats.PositionTime)

	// Stage 2: Analyze
	result.Analysis = analyze(model, opts)
	result.Stats.EdgeCount = result.Analysis.Count

	r.Logger.Info("resolved references",
		"edges", result.Analysis.Count,
		"strategy", result.Analysis.Strategy)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.render(ctx, model, hash, positions, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputePositionsWithCacheInfo returns the positions of model and whether
// they came from the cache. A saved map that covers the model is returned
// as-is and skips the layout engine.
func (r *Runner) ComputePositionsWithCacheInfo(ctx context.Context, model schema.Model, opts Options) (layout.PositionMap, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	model, err := PrepareModel(model, opts)
	if err != nil {
		return nil, false, err
	}
	hash, err := HashModel(model)
	if err != nil {
		return nil, false, err
	}
	return r.computePositions(ctx, model, hash, opts)
}

// ComputePositions is a convenience wrapper that calls
// ComputePositionsWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputePositions(ctx context.Context, model schema.Model, opts Options) (layout.PositionMap, error) {
	positions, _, err := r.ComputePositionsWithCacheInfo(ctx, model, opts)
	return positions, err
}

func (r *Runner) computePositions(ctx context.Context, model schema.Model, hash string, opts Options) (layout.PositionMap, bool, error) {
	if opts.Saved != nil && opts.Saved.Covers(model) {
		opts.Logger.Debug("using saved positions", "types", model.Len())
		return opts.Saved.Clone(), false, nil
	}
	if opts.Saved != nil {
		opts.Logger.Warn("saved positions do not match the model, recomputing",
			"saved", len(opts.Saved), "types", model.Len())
	}

	cacheKey := r.Keyer.PositionsKey(hash, opts.PositionsKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.PositionMap
			if err := json.Unmarshal(data, &cached); err == nil && cached.Covers(model) {
				observability.Cache().OnCacheHit(ctx, cache.KeyTypePositions)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypePositions)
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, model.Len())
	start := time.Now()
	positions := layout.Initial(model, opts.Metrics)
	hooks.OnLayoutComplete(ctx, model.Len(), time.Since(start), nil)

	if data, err := json.Marshal(positions); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLPositions); err != nil {
			opts.Logger.Warn("cache write failed", "key", cache.KeyTypePositions, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypePositions, len(data))
		}
	}

	return positions, false, nil
}

// Analyze resolves the references of model and chooses the drawing
// strategy. Resolution is cheap and never cached.
func (r *Runner) Analyze(ctx context.Context, model schema.Model, opts Options) (Analysis, error) {
	if err := ValidateStrategy(opts.Strategy); err != nil {
		return Analysis{}, err
	}
	model, err := PrepareModel(model, opts)
	if err != nil {
		return Analysis{}, err
	}
	return analyze(model, opts), nil
}

func analyze(model schema.Model, opts Options) Analysis {
	edges := refs.Resolve(model)
	strategy := opts.ForcedStrategy()
	if strategy == "" {
		strategy = connect.ChooseStrategy(len(edges))
	}
	return Analysis{Edges: edges, Count: len(edges), Strategy: strategy}
}

// RenderWithCacheInfo renders model at the given positions and reports
// whether every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, model schema.Model, positions layout.PositionMap, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	model, err := PrepareModel(model, opts)
	if err != nil {
		return nil, false, err
	}
	hash, err := HashModel(model)
	if err != nil {
		return nil, false, err
	}
	return r.render(ctx, model, hash, positions, opts)
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, model schema.Model, positions layout.PositionMap, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, model, positions, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, model schema.Model, hash string, positions layout.PositionMap, opts Options) (map[string][]byte, bool, error) {
	posHash, err := cache.HashJSON(positions)
	if err != nil {
		return nil, false, fmt.Errorf("serialize positions for cache key: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(hash, posHash, opts.RenderKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, cache.KeyTypeRender)
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, cache.KeyTypeRender)

	rendered, err := RenderFromPositions(ctx, model, positions, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.RenderKey(hash, posHash, opts.RenderKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err == nil {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeRender, len(data))
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
