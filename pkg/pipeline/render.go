package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/diagram"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/observability"
	"github.com/matzehuels/typegraph/pkg/refs"
	"github.com/matzehuels/typegraph/pkg/render"
	"github.com/matzehuels/typegraph/pkg/render/dot"
	"github.com/matzehuels/typegraph/pkg/render/mermaid"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// RenderFromPositions draws model at positions and renders every requested
// format. model must already be prepared (see [PrepareModel]).
func RenderFromPositions(ctx context.Context, model schema.Model, positions layout.PositionMap, opts Options) (map[string][]byte, error) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	count := refs.Count(model)
	strategy := opts.ForcedStrategy()
	if strategy == "" {
		strategy = connect.ChooseStrategy(count)
	}

	hooks := observability.Pipeline()
	hooks.OnDrawStart(ctx, string(strategy), count)
	start := time.Now()
	conn := dot.NewConnector()
	d := diagram.New(model, conn, diagram.Options{
		Metrics:  opts.Metrics,
		Saved:    positions,
		Strategy: strategy,
		Logger:   opts.Logger,
	})
	hooks.OnDrawComplete(ctx, string(strategy), d.Drawing().Len(), time.Since(start))

	r := &renderer{ctx: ctx, model: model, diagram: d, conn: conn, opts: opts}
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		data, err := r.render(format)
		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// renderer produces each format at most once per diagram; PNG and PDF reuse
// the SVG.
type renderer struct {
	ctx     context.Context
	model   schema.Model
	diagram *diagram.Diagram
	conn    *dot.Connector
	opts    Options

	svg []byte
}

func (r *renderer) dotSource() string {
	var related []string
	if r.opts.Highlight != "" {
		related = r.diagram.Related(r.opts.Highlight)
	}
	return dot.ToDOT(r.model, r.diagram.Positions(), r.conn, dot.Options{
		Metrics:   r.opts.Metrics,
		Highlight: r.opts.Highlight,
		Related:   related,
	})
}

func (r *renderer) svgBytes() ([]byte, error) {
	if r.svg != nil {
		return r.svg, nil
	}
	svg, err := dot.RenderSVG(r.ctx, r.dotSource())
	if err != nil {
		return nil, err
	}
	r.svg = svg
	return svg, nil
}

func (r *renderer) render(format string) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(r.dotSource()), nil
	case FormatSVG:
		return r.svgBytes()
	case FormatPNG:
		svg, err := r.svgBytes()
		if err != nil {
			return nil, err
		}
		return render.ToPNG(r.ctx, svg, r.opts.Scale)
	case FormatPDF:
		svg, err := r.svgBytes()
		if err != nil {
			return nil, err
		}
		return render.ToPDF(r.ctx, svg)
	case FormatMermaid:
		return []byte(mermaid.Render(r.model, r.diagram.Drawing().Connections())), nil
	case FormatJSON:
		var buf bytes.Buffer
		if err := r.diagram.Snapshot().WriteJSON(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, ValidateFormat(format)
	}
}
