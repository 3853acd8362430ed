// Package pipeline provides the diagram pipeline shared by the CLI and the
// HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Positions: reuse a saved position map or compute the initial layout
//  2. Analyze: resolve references, count them and choose a drawing strategy
//  3. Render: draw the connections and emit DOT, SVG, PNG, PDF, Mermaid or
//     JSON
//
// Positions and rendered artifacts are cached by a hash of their inputs.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, model, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	positions, err := runner.ComputePositions(ctx, model, opts)
//	analysis, err := runner.Analyze(ctx, model, opts)
//	artifacts, err := runner.Render(ctx, model, positions, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typegraph/pkg/cache"
	"github.com/matzehuels/typegraph/pkg/connect"
	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/refs"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultPNGScale is the default resolution multiplier for PNG export.
const DefaultPNGScale = 2.0

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
	FormatJSON    = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatPNG:     true,
	FormatPDF:     true,
	FormatDOT:     true,
	FormatMermaid: true,
	FormatJSON:    true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Metrics   layout.Metrics     `json:"metrics,omitempty"`
	WithAsset bool               `json:"with_asset,omitempty"`
	Saved     layout.PositionMap `json:"positions,omitempty"` // Previously saved positions
	Refresh   bool               `json:"refresh,omitempty"`   // Ignore cached positions

	// Draw options
	Strategy string `json:"strategy,omitempty"` // Empty chooses from the reference count

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Highlight string   `json:"highlight,omitempty"` // Type whose neighbourhood is marked
	Scale     float64  `json:"scale,omitempty"`     // PNG scale

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Model is the rendered model, including an injected Asset type.
	Model schema.Model

	// ModelHash is the content hash of Model.
	ModelHash string

	// Positions are the card positions used for rendering.
	Positions layout.PositionMap

	// Analysis holds the resolved edges and the chosen strategy.
	Analysis Analysis

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Analysis is the outcome of resolving a model's references.
type Analysis struct {
	Edges    []refs.Edge      `json:"edges"`
	Count    int              `json:"count"`
	Strategy connect.Strategy `json:"strategy"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TypeCount    int
	EdgeCount    int
	PositionTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PositionsHit bool // Whether positions came from cache
	RenderHit    bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return typeerrors.New(typeerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a forced strategy is valid. Empty is valid.
func ValidateStrategy(s string) error {
	if s == "" {
		return nil
	}
	if _, err := connect.ParseStrategy(s); err != nil {
		return typeerrors.Wrap(typeerrors.ErrCodeInvalidInput, err, "strategy")
	}
	return nil
}

// ValidateMetrics checks that card dimensions are usable.
func ValidateMetrics(m layout.Metrics) error {
	if m.CardWidth <= 0 || m.HeaderHeight <= 0 || m.FieldHeight <= 0 {
		return typeerrors.New(typeerrors.ErrCodeInvalidInput, "invalid metrics: card width, header height and field height must be positive")
	}
	if m.XMargin < 0 || m.CardMargin < 0 {
		return typeerrors.New(typeerrors.ErrCodeInvalidInput, "invalid metrics: margins must not be negative")
	}
	return nil
}

func formatNames() []string {
	return []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatMermaid, FormatJSON}
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for position computation.
func (o *Options) SetLayoutDefaults() {
	if o.Metrics == (layout.Metrics{}) {
		o.Metrics = layout.DefaultMetrics()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for position computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateMetrics(o.Metrics)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// ForcedStrategy returns the strategy override, or "" to choose
// automatically.
func (o *Options) ForcedStrategy() connect.Strategy {
	return connect.Strategy(o.Strategy)
}

// PositionsKeyOpts returns cache key options for position computation.
func (o *Options) PositionsKeyOpts() cache.PositionsKeyOpts {
	return cache.PositionsKeyOpts{
		CardWidth:    o.Metrics.CardWidth,
		XMargin:      o.Metrics.XMargin,
		HeaderHeight: o.Metrics.HeaderHeight,
		FieldHeight:  o.Metrics.FieldHeight,
		CardMargin:   o.Metrics.CardMargin,
		WithAsset:    o.WithAsset,
	}
}

// RenderKeyOpts returns cache key options for artifact rendering.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	opts := cache.RenderKeyOpts{
		Format:       format,
		Strategy:     o.Strategy,
		Highlight:    o.Highlight,
		CardWidth:    o.Metrics.CardWidth,
		XMargin:      o.Metrics.XMargin,
		HeaderHeight: o.Metrics.HeaderHeight,
		FieldHeight:  o.Metrics.FieldHeight,
		CardMargin:   o.Metrics.CardMargin,
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
