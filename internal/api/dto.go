package api

import (
	"github.com/matzehuels/typegraph/pkg/buildinfo"
	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/refs"
	"github.com/matzehuels/typegraph/pkg/schema"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

// ModelRequest is the body shared by every model endpoint. Unset options
// fall back to the server configuration.
type ModelRequest struct {
	Model     schema.Model       `json:"model"`
	Positions layout.PositionMap `json:"positions,omitempty"`
	Metrics   *layout.Metrics    `json:"metrics,omitempty"`
	WithAsset *bool              `json:"with_asset,omitempty"`
	Strategy  string             `json:"strategy,omitempty"`
	Refresh   bool               `json:"refresh,omitempty"`
}

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	ModelRequest
	Format    string  `json:"format"`
	Highlight string  `json:"highlight,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// FitRequest is the body of POST /api/fit. Either Boxes are given, or a
// model whose cards are measured from the layout metrics.
type FitRequest struct {
	Boxes    []viewport.Box `json:"boxes,omitempty"`
	Viewport viewport.Size  `json:"viewport"`
	Padding  *float64       `json:"padding,omitempty"`
	*ModelRequest
}

// PositionsResponse is returned by POST /api/positions.
type PositionsResponse struct {
	Positions layout.PositionMap `json:"positions"`
	Cached    bool               `json:"cached"`
}

// EdgesResponse is returned by POST /api/edges.
type EdgesResponse struct {
	Edges    []refs.Edge      `json:"edges"`
	Count    int              `json:"count"`
	Strategy connect.Strategy `json:"strategy"`
}

// StrategyResponse is returned by GET /api/strategy.
type StrategyResponse struct {
	Count     int              `json:"count"`
	Threshold int              `json:"threshold"`
	Strategy  connect.Strategy `json:"strategy"`
}

// FitResponse is returned by POST /api/fit. Fitted is false for an empty
// diagram, in which case the camera should not move.
type FitResponse struct {
	Fitted bool          `json:"fitted"`
	Fit    *viewport.Fit `json:"fit,omitempty"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}
