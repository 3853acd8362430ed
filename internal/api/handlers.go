package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typegraph/pkg/buildinfo"
	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/diagram"
	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/pipeline"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

// Options configures a Handler.
type Options struct {
	// Defaults supply metrics, asset injection and strategy for requests
	// that leave them unset.
	Defaults pipeline.Options
	// Padding is the default fit padding. Nil uses viewport.DefaultPadding.
	Padding *float64
	Logger  *log.Logger
}

// Handler holds API route handlers.
type Handler struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	padding  float64
	logger   *log.Logger
}

// NewHandler creates a new Handler.
func NewHandler(runner *pipeline.Runner, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	padding := viewport.DefaultPadding
	if opts.Padding != nil {
		padding = *opts.Padding
	}
	opts.Defaults.Logger = opts.Logger
	return &Handler{
		runner:   runner,
		defaults: opts.Defaults,
		padding:  padding,
		logger:   opts.Logger,
	}
}

// options merges a request over the server defaults.
func (h *Handler) options(req *ModelRequest) pipeline.Options {
	opts := h.defaults
	opts.Formats = nil
	opts.Saved = req.Positions
	opts.Refresh = req.Refresh
	if req.Metrics != nil {
		opts.Metrics = *req.Metrics
	}
	if req.WithAsset != nil {
		opts.WithAsset = *req.WithAsset
	}
	if req.Strategy != "" {
		opts.Strategy = req.Strategy
	}
	return opts
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

// Positions handles POST /api/positions.
func (h *Handler) Positions(w http.ResponseWriter, r *http.Request) {
	var req ModelRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	positions, cached, err := h.runner.ComputePositionsWithCacheInfo(r.Context(), req.Model, h.options(&req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, PositionsResponse{Positions: positions, Cached: cached})
}

// Edges handles POST /api/edges.
func (h *Handler) Edges(w http.ResponseWriter, r *http.Request) {
	var req ModelRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	analysis, err := h.runner.Analyze(r.Context(), req.Model, h.options(&req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, EdgesResponse{
		Edges:    analysis.Edges,
		Count:    analysis.Count,
		Strategy: analysis.Strategy,
	})
}

// Strategy handles GET /api/strategy?count=N.
func (h *Handler) Strategy(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil || count < 0 {
		h.writeError(w, typeerrors.New(typeerrors.ErrCodeInvalidInput, "count must be a non-negative integer"))
		return
	}
	h.writeJSON(w, http.StatusOK, StrategyResponse{
		Count:     count,
		Threshold: connect.Threshold,
		Strategy:  connect.ChooseStrategy(count),
	})
}

// Fit handles POST /api/fit.
func (h *Handler) Fit(w http.ResponseWriter, r *http.Request) {
	var req FitRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		h.writeError(w, typeerrors.New(typeerrors.ErrCodeInvalidInput, "viewport width and height must be positive"))
		return
	}
	padding := h.padding
	if req.Padding != nil {
		padding = *req.Padding
	}

	var (
		fit viewport.Fit
		ok  bool
	)
	switch {
	case len(req.Boxes) > 0:
		fit, ok = viewport.Compute(req.Boxes, req.Viewport, padding)
	case req.ModelRequest != nil:
		f, fitted, err := h.fitModel(r, req.ModelRequest, req.Viewport, padding)
		if err != nil {
			h.writeError(w, err)
			return
		}
		fit, ok = f, fitted
	}

	if !ok {
		h.writeJSON(w, http.StatusOK, FitResponse{Fitted: false})
		return
	}
	h.writeJSON(w, http.StatusOK, FitResponse{Fitted: true, Fit: &fit})
}

// fitModel lays out the model, measures every card from the metrics and
// fits the result.
func (h *Handler) fitModel(r *http.Request, req *ModelRequest, vp viewport.Size, padding float64) (viewport.Fit, bool, error) {
	opts := h.options(req)
	if err := opts.ValidateForLayout(); err != nil {
		return viewport.Fit{}, false, err
	}
	model, err := pipeline.PrepareModel(req.Model, opts)
	if err != nil {
		return viewport.Fit{}, false, err
	}
	positions, err := h.runner.ComputePositions(r.Context(), req.Model, opts)
	if err != nil {
		return viewport.Fit{}, false, err
	}

	d := diagram.New(model, connect.NewRecorder(), diagram.Options{
		Metrics: opts.Metrics,
		Saved:   positions,
		Padding: &padding,
		Logger:  h.logger,
	})
	defer d.Close()
	d.MeasureFromLayout(opts.Metrics)
	return d.Fit(vp)
}

// Render handles POST /api/render. The artifact is returned as the body
// with its media type; X-Cache reports whether it came from the cache.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	opts := h.options(&req.ModelRequest)
	opts.Formats = []string{req.Format}
	opts.Highlight = req.Highlight
	opts.Scale = req.Scale
	if err := opts.ValidateForRender(); err != nil {
		h.writeError(w, err)
		return
	}

	ctx := r.Context()
	positions, _, err := h.runner.ComputePositionsWithCacheInfo(ctx, req.Model, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	artifacts, hit, err := h.runner.RenderWithCacheInfo(ctx, req.Model, positions, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(req.Format))
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifacts[req.Format]); err != nil {
		h.logger.Warn("write artifact failed", "format", req.Format, "error", err)
	}
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case pipeline.FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
