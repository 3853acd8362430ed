package layout

import (
	"math"

	"github.com/matzehuels/typegraph/pkg/schema"
)

// SingleRowLimit is the largest model laid out as a single row.
const SingleRowLimit = 3

// Position is the top-left corner of an entity type card in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// PositionMap maps entity type ids to card positions.
type PositionMap map[string]Position

// Clone returns an independent copy of the map.
func (m PositionMap) Clone() PositionMap {
	if m == nil {
		return nil
	}
	out := make(PositionMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Covers reports whether the key set of m equals the type ids of model.
func (m PositionMap) Covers(model schema.Model) bool {
	if len(m) != model.Len() {
		return false
	}
	for _, t := range model.Types {
		if _, ok := m[t.ID]; !ok {
			return false
		}
	}
	return true
}

// Metrics are the card dimensions of the rendering surface.
type Metrics struct {
	CardWidth    float64 `json:"card_width" toml:"card_width"`
	XMargin      float64 `json:"x_margin" toml:"x_margin"`
	HeaderHeight float64 `json:"header_height" toml:"header_height"`
	FieldHeight  float64 `json:"field_height" toml:"field_height"`
	CardMargin   float64 `json:"card_margin" toml:"card_margin"`
}

// Default card metrics, matching the web surface's card stylesheet.
const (
	DefaultCardWidth    = 280.0
	DefaultXMargin      = 80.0
	DefaultHeaderHeight = 56.0
	DefaultFieldHeight  = 32.0
	DefaultCardMargin   = 48.0
)

// DefaultMetrics returns the metrics of the default card style.
func DefaultMetrics() Metrics {
	return Metrics{
		CardWidth:    DefaultCardWidth,
		XMargin:      DefaultXMargin,
		HeaderHeight: DefaultHeaderHeight,
		FieldHeight:  DefaultFieldHeight,
		CardMargin:   DefaultCardMargin,
	}
}

// ColumnStep is the horizontal distance between neighbouring columns.
func (m Metrics) ColumnStep() float64 { return m.CardWidth + m.XMargin }

// CardHeight estimates the rendered height of t's card, margin included.
func (m Metrics) CardHeight(t schema.EntityType) float64 {
	return m.HeaderHeight + float64(t.FieldCount())*m.FieldHeight + m.CardMargin
}

// Columns returns the number of columns Initial uses for a model of n types.
func Columns(n int) int {
	if n <= SingleRowLimit {
		return n
	}
	return int(math.Floor(math.Sqrt(float64(n))))
}

// Initial computes the starting position of every entity type.
// The result is deterministic: identical model order and field counts always
// yield identical positions. An empty model yields an empty map.
func Initial(model schema.Model, metrics Metrics) PositionMap {
	positions := make(PositionMap, model.Len())
	if model.IsEmpty() {
		return positions
	}

	step := metrics.ColumnStep()
	if model.Len() <= SingleRowLimit {
		for i, t := range model.Types {
			positions[t.ID] = Position{X: float64(i) * step, Y: 0}
		}
		return positions
	}

	heights := make([]float64, Columns(model.Len()))
	for _, t := range model.Types {
		col := shortest(heights)
		positions[t.ID] = Position{X: float64(col) * step, Y: heights[col]}
		heights[col] += metrics.CardHeight(t)
	}
	return positions
}

// shortest returns the index of the smallest accumulated height, preferring
// the lowest index on ties.
func shortest(heights []float64) int {
	best := 0
	for i := 1; i < len(heights); i++ {
		if heights[i] < heights[best] {
			best = i
		}
	}
	return best
}
