// Package dot renders a laid-out diagram with Graphviz.
//
// # Overview
//
// [Connector] is a connect.Connector that records every connection as a
// Graphviz edge instead of drawing it on screen. [ToDOT] then emits the
// diagram as DOT source with each type card pinned at its stored position,
// so Graphviz only routes the edges and never moves a card:
//
//	c := dot.NewConnector()
//	drawing := connect.Draw(edges, strategy, c)
//	src := dot.ToDOT(model, positions, c, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// Cards are record-shaped nodes with one port per field. Detailed
// connections leave from the field's port; light connections join the cards
// and carry the number of references they stand for as a label.
//
// # Coordinates
//
// Positions are in layout points with y growing downwards. DOT pins use
// inputscale=72 so one layout point is one Graphviz point, and the y axis is
// flipped because Graphviz grows upwards.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering and [github.com/google/uuid] for connection identifiers.
package dot
