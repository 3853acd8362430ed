package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// pointsPerInch is Graphviz's unit conversion for node sizes.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Metrics sizes the cards. Zero uses layout.DefaultMetrics.
	Metrics layout.Metrics
	// Highlight marks one type and its neighbourhood.
	Highlight string
	// Related is the neighbourhood of Highlight.
	Related []string
}

// ToDOT converts a laid-out model and the connector's edges to DOT source.
func ToDOT(model schema.Model, positions layout.PositionMap, c *Connector, opts Options) string {
	m := opts.Metrics
	if m == (layout.Metrics{}) {
		m = layout.DefaultMetrics()
	}
	related := make(map[string]bool, len(opts.Related))
	for _, id := range opts.Related {
		related[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, fixedsize=true];\n")
	buf.WriteString("  edge [color=\"#64748b\", arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, t := range model.Types {
		p := positions[t.ID]
		attrs := []string{
			"label=" + quoteLabel(recordLabel(t)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(p.X+m.CardWidth/2), num(-(p.Y + m.CardHeight(t)/2))),
			fmt.Sprintf("width=%s", num(m.CardWidth/pointsPerInch)),
			fmt.Sprintf("height=%s", num(m.CardHeight(t)/pointsPerInch)),
		}
		switch {
		case t.ID == opts.Highlight:
			attrs = append(attrs, "fillcolor=\"#fde68a\"", "penwidth=2")
		case related[t.ID]:
			attrs = append(attrs, "fillcolor=\"#fef3c7\"")
		case t.Internal:
			attrs = append(attrs, "fillcolor=\"#f1f5f9\"", "style=\"rounded,filled,dashed\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", t.ID, strings.Join(attrs, ", "))
	}

	// Targets without a card (an asset-only field when Asset is not
	// injected) are not drawn.
	registered := model.Registered()
	buf.WriteString("\n")
	for _, e := range c.Edges() {
		if !registered[e.Source.TypeID] || !registered[e.Target.TypeID] {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", endpoint(e.Source), endpoint(e.Target), strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeAttrs(e Edge) []string {
	attrs := []string{fmt.Sprintf("id=%q", string(e.ID))}
	if e.Style.Strategy == connect.Light {
		attrs = append(attrs, "arrowhead=none")
		if e.Style.Multiplicity > 1 {
			attrs = append(attrs, fmt.Sprintf("label=\"×%d\"", e.Style.Multiplicity))
		}
	}
	if e.Style.SelfLoop {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// endpoint returns a node id with an optional field port.
func endpoint(h connect.Handle) string {
	if h.IsCard() {
		return strconv.Quote(h.TypeID)
	}
	return fmt.Sprintf("%q:%q", h.TypeID, port(h.FieldID))
}

// recordLabel builds "{<_> Title|<f_a> a\l|...}" for a card.
func recordLabel(t schema.EntityType) string {
	parts := []string{"<_card> " + escapeRecord(t.DisplayName())}
	for _, f := range t.Fields {
		text := f.DisplayName()
		if f.IsReference() {
			text += " →"
		}
		parts = append(parts, fmt.Sprintf("<%s> %s\\l", port(f.ID), escapeRecord(text)))
	}
	return "{" + strings.Join(parts, "|") + "}"
}

// port returns a record port name for a field id.
func port(fieldID string) string {
	return "f_" + portRe.ReplaceAllString(fieldID, "_")
}

var portRe = regexp.MustCompile(`[^A-Za-z0-9_]`)

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

func escapeRecord(s string) string {
	return recordEscaper.Replace(s)
}

// quoteLabel quotes an already escaped record label.
func quoteLabel(s string) string {
	return `"` + s + `"`
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a plain viewBox so the SVG
// scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
