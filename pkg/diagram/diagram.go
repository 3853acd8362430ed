package diagram

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typegraph/pkg/connect"
	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/refs"
	"github.com/matzehuels/typegraph/pkg/schema"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

// ErrNotMeasured is returned when the viewport is fitted before every card
// has a measured box. It indicates a caller bug, not a transient condition.
var ErrNotMeasured = errors.New("diagram not measured")

// Options configures a Diagram.
type Options struct {
	// Metrics are the card dimensions of the rendering surface.
	Metrics layout.Metrics
	// Saved is a previously persisted position map. When it covers the model
	// the layout engine is skipped.
	Saved layout.PositionMap
	// Strategy forces a drawing strategy. Empty or unknown selects one from
	// the connection count.
	Strategy connect.Strategy
	// WithAsset injects the internal Asset type when the model lacks it.
	WithAsset bool
	// Padding is the outer viewport padding used by Fit. Nil uses
	// viewport.DefaultPadding; zero is a valid padding.
	Padding *float64
	// Logger receives debug output. Defaults to a discard logger.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Metrics == (layout.Metrics{}) {
		o.Metrics = layout.DefaultMetrics()
	}
	if o.Padding == nil {
		p := viewport.DefaultPadding
		o.Padding = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Diagram is one rendered content model.
type Diagram struct {
	model   schema.Model
	edges   []refs.Edge
	count   int
	store   *layout.Store
	drawing *connect.Drawing
	boxes   map[string]viewport.Box
	padding float64
	logger  *log.Logger
}

// New lays out model, then resolves and draws its references through c.
func New(model schema.Model, c connect.Connector, opts Options) *Diagram {
	opts.setDefaults()
	if opts.WithAsset {
		model = model.WithAsset()
	}

	d := &Diagram{
		model:   model,
		store:   layout.NewStore(model, opts.Saved, opts.Metrics),
		boxes:   make(map[string]viewport.Box, model.Len()),
		padding: *opts.Padding,
		logger:  opts.Logger,
	}

	d.edges = refs.Resolve(model)
	d.count = len(d.edges)
	strategy := opts.Strategy
	if strategy != "" {
		if _, err := connect.ParseStrategy(string(strategy)); err != nil {
			d.logger.Warn("ignoring forced strategy", "err", err)
			strategy = ""
		}
	}
	if strategy == "" {
		strategy = connect.ChooseStrategy(d.count)
	}
	d.drawing = connect.Draw(d.edges, strategy, c)

	d.logger.Debug("diagram drawn",
		"types", model.Len(),
		"positions", d.store.Source(),
		"edges", d.count,
		"strategy", d.drawing.Strategy(),
		"connections", d.drawing.Len())
	return d
}

// Model returns the diagram's model, including an injected Asset type.
func (d *Diagram) Model() schema.Model { return d.model }

// Edges returns the resolved edges in resolution order.
func (d *Diagram) Edges() []refs.Edge {
	out := make([]refs.Edge, len(d.edges))
	copy(out, d.edges)
	return out
}

// Count returns the number of resolved edges.
func (d *Diagram) Count() int { return d.count }

// Strategy returns the drawing strategy in use.
func (d *Diagram) Strategy() connect.Strategy { return d.drawing.Strategy() }

// Drawing returns the drawn connections.
func (d *Diagram) Drawing() *connect.Drawing { return d.drawing }

// Positions returns a copy of the current positions.
func (d *Diagram) Positions() layout.PositionMap { return d.store.Snapshot() }

// Position returns the current position of one type.
func (d *Diagram) Position(id string) (layout.Position, bool) { return d.store.Get(id) }

// Related returns the neighbourhood of a type for hover highlighting.
func (d *Diagram) Related(id string) []string { return d.drawing.Related(id) }

// Drag moves one type by a delta and re-routes its connections. A measured
// box for the type moves with it. It returns the new position and the number
// of connections re-routed.
func (d *Diagram) Drag(id string, dx, dy float64) (layout.Position, int, error) {
	p, err := d.store.Move(id, dx, dy)
	if err != nil {
		return layout.Position{}, 0, err
	}
	if b, ok := d.boxes[id]; ok {
		b.Left += dx
		b.Top += dy
		d.boxes[id] = b
	}
	n := d.drawing.Revalidate(id)
	d.logger.Debug("drag", "type", id, "x", p.X, "y", p.Y, "rerouted", n)
	return p, n, nil
}

// Measure records the rendered box of one card.
func (d *Diagram) Measure(id string, b viewport.Box) error {
	if _, ok := d.store.Get(id); !ok {
		return typeerrors.Wrap(typeerrors.ErrCodeUnknownType, layout.ErrUnknownType, "measure %s", id)
	}
	d.boxes[id] = b
	return nil
}

// MeasureAll records the rendered boxes of several cards. Nothing is
// recorded if any id is unknown.
func (d *Diagram) MeasureAll(boxes map[string]viewport.Box) error {
	for id := range boxes {
		if _, ok := d.store.Get(id); !ok {
			return typeerrors.Wrap(typeerrors.ErrCodeUnknownType, layout.ErrUnknownType, "measure %s", id)
		}
	}
	for id, b := range boxes {
		d.boxes[id] = b
	}
	return nil
}

// MeasureFromLayout derives boxes from the current positions and the card
// heights of metrics, for surfaces that draw cards at their estimated size.
func (d *Diagram) MeasureFromLayout(metrics layout.Metrics) {
	for _, t := range d.model.Types {
		p, _ := d.store.Get(t.ID)
		d.boxes[t.ID] = viewport.Box{
			Left:   p.X,
			Top:    p.Y,
			Width:  metrics.CardWidth,
			Height: metrics.CardHeight(t),
		}
	}
}

// Unmeasured returns the ids of types without a measured box, in model order.
func (d *Diagram) Unmeasured() []string {
	var out []string
	for _, id := range d.store.IDs() {
		if _, ok := d.boxes[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Measured reports whether every card has a measured box.
func (d *Diagram) Measured() bool { return len(d.boxes) == d.store.Len() }

// Boxes returns the measured boxes in model order.
func (d *Diagram) Boxes() []viewport.Box {
	out := make([]viewport.Box, 0, len(d.boxes))
	for _, id := range d.store.IDs() {
		if b, ok := d.boxes[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Fit computes the viewport fit. ok is false for an empty diagram, in which
// case the camera must be left alone.
func (d *Diagram) Fit(vp viewport.Size) (f viewport.Fit, ok bool, err error) {
	if missing := d.Unmeasured(); len(missing) > 0 {
		return viewport.Fit{}, false, typeerrors.Wrap(typeerrors.ErrCodeNotMeasured, ErrNotMeasured,
			"unmeasured: %s", strings.Join(missing, ", "))
	}
	f, ok = viewport.Compute(d.Boxes(), vp, d.padding)
	return f, ok, nil
}

// Center fits the viewport and applies it through ctrl. It reports whether
// the camera was moved.
func (d *Diagram) Center(ctrl *viewport.Controller, vp viewport.Size) (bool, error) {
	f, ok, err := d.Fit(vp)
	if err != nil || !ok {
		return false, err
	}
	ctrl.Apply(f)
	d.logger.Debug("center", "scale", f.Scale, "x", f.OffsetX, "y", f.OffsetY)
	return true, nil
}

// Close destroys every drawn connection.
func (d *Diagram) Close() {
	d.drawing.Destroy()
}
