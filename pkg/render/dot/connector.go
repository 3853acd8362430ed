package dot

import (
	"github.com/google/uuid"

	"github.com/matzehuels/typegraph/pkg/connect"
)

// Edge is a connection recorded for DOT output.
type Edge struct {
	ID     connect.Connection
	Source connect.Handle
	Target connect.Handle
	Style  connect.Style
}

// Connector records connections as Graphviz edges. Connection ids are
// random UUIDs so several diagrams can share one output document.
//
// Connector is not safe for concurrent use.
type Connector struct {
	edges       []Edge
	index       map[connect.Connection]int
	destroyed   map[connect.Connection]bool
	revalidated map[connect.Connection]int
}

// NewConnector creates an empty connector.
func NewConnector() *Connector {
	return &Connector{
		index:       make(map[connect.Connection]int),
		destroyed:   make(map[connect.Connection]bool),
		revalidated: make(map[connect.Connection]int),
	}
}

// Connect records an edge.
func (c *Connector) Connect(src, dst connect.Handle, style connect.Style) connect.Connection {
	id := connect.Connection(uuid.NewString())
	c.index[id] = len(c.edges)
	c.edges = append(c.edges, Edge{ID: id, Source: src, Target: dst, Style: style})
	return id
}

// Revalidate marks an edge for re-routing. Routing happens when the DOT
// source is rendered, so this only counts the request.
func (c *Connector) Revalidate(id connect.Connection) {
	if _, ok := c.index[id]; ok && !c.destroyed[id] {
		c.revalidated[id]++
	}
}

// Destroy drops an edge from the output.
func (c *Connector) Destroy(id connect.Connection) {
	if _, ok := c.index[id]; ok {
		c.destroyed[id] = true
	}
}

// Edges returns the live edges in creation order.
func (c *Connector) Edges() []Edge {
	out := make([]Edge, 0, len(c.edges))
	for _, e := range c.edges {
		if !c.destroyed[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// Revalidations returns how often an edge was revalidated.
func (c *Connector) Revalidations(id connect.Connection) int { return c.revalidated[id] }

var _ connect.Connector = (*Connector)(nil)
