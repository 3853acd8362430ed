// Package render turns a laid-out diagram into output documents.
//
// # Overview
//
//   - [dot]: Graphviz DOT source and SVG with every card pinned at its stored
//     position
//   - [mermaid]: Mermaid erDiagram source for Markdown docs
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, err := dot.RenderSVG(ctx, src)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [dot]: github.com/matzehuels/typegraph/pkg/render/dot
// [mermaid]: github.com/matzehuels/typegraph/pkg/render/mermaid
package render
