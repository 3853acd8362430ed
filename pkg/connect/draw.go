package connect

import (
	"github.com/matzehuels/typegraph/pkg/refs"
)

// Drawn is a connection placed on the surface together with the resolved
// edges it represents.
type Drawn struct {
	ID     Connection  `json:"id"`
	Source Handle      `json:"source"`
	Target Handle      `json:"target"`
	Style  Style       `json:"style"`
	Edges  []refs.Edge `json:"edges"`
}

// Drawing is the set of connections drawn for one diagram, indexed for
// re-routing and neighbourhood lookups.
//
// The zero value is not usable; create drawings with [Draw]. A Drawing is not
// safe for concurrent use.
type Drawing struct {
	strategy  Strategy
	connector Connector
	conns     []Drawn
	byType    map[string][]int
	related   map[string][]string
	seen      map[[2]string]bool
}

// Draw draws edges through c using strategy and returns the drawing.
//
// In Detailed mode every edge becomes one connection from its field handle
// to the target card; two fields pointing at the same type produce two
// connections. In Light mode edges are grouped by the unordered pair of
// their types and each group becomes one card-to-card connection, anchored in
// the direction of the first edge of the group. Connections are created in
// edge order.
func Draw(edges []refs.Edge, strategy Strategy, c Connector) *Drawing {
	d := &Drawing{
		strategy:  strategy,
		connector: c,
		byType:    make(map[string][]int),
		related:   make(map[string][]string),
		seen:      make(map[[2]string]bool),
	}

	switch strategy {
	case Light:
		d.drawLight(edges)
	default:
		d.strategy = Detailed
		d.drawDetailed(edges)
	}

	for _, e := range edges {
		d.relate(e.SourceTypeID, e.TargetTypeID)
		d.relate(e.TargetTypeID, e.SourceTypeID)
	}
	return d
}

func (d *Drawing) drawDetailed(edges []refs.Edge) {
	for _, e := range edges {
		d.add(Drawn{
			Source: FieldHandle(e.SourceTypeID, e.SourceFieldID),
			Target: CardHandle(e.TargetTypeID),
			Style:  Style{Strategy: Detailed, SelfLoop: e.IsSelf(), Multiplicity: 1},
			Edges:  []refs.Edge{e},
		})
	}
}

func (d *Drawing) drawLight(edges []refs.Edge) {
	var groups []*Drawn
	index := make(map[[2]string]int)
	for _, e := range edges {
		key := PairKey(e.SourceTypeID, e.TargetTypeID)
		if i, ok := index[key]; ok {
			groups[i].Edges = append(groups[i].Edges, e)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, &Drawn{
			Source: CardHandle(e.SourceTypeID),
			Target: CardHandle(e.TargetTypeID),
			Edges:  []refs.Edge{e},
		})
	}

	for _, g := range groups {
		g.Style = Style{
			Strategy:     Light,
			SelfLoop:     g.Source.TypeID == g.Target.TypeID,
			Multiplicity: len(g.Edges),
		}
		d.add(*g)
	}
}

// add connects c and indexes it under both of its types.
func (d *Drawing) add(c Drawn) {
	c.ID = d.connector.Connect(c.Source, c.Target, c.Style)
	i := len(d.conns)
	d.conns = append(d.conns, c)

	d.byType[c.Source.TypeID] = append(d.byType[c.Source.TypeID], i)
	if c.Target.TypeID != c.Source.TypeID {
		d.byType[c.Target.TypeID] = append(d.byType[c.Target.TypeID], i)
	}
}

func (d *Drawing) relate(from, to string) {
	k := [2]string{from, to}
	if d.seen[k] {
		return
	}
	d.seen[k] = true
	d.related[from] = append(d.related[from], to)
}

// PairKey returns the canonical unordered key of two type ids. A self
// reference yields a single degenerate key.
func PairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Strategy returns the strategy the drawing was made with.
func (d *Drawing) Strategy() Strategy { return d.strategy }

// Len returns the number of drawn connections.
func (d *Drawing) Len() int { return len(d.conns) }

// Connections returns the drawn connections in creation order.
func (d *Drawing) Connections() []Drawn {
	out := make([]Drawn, len(d.conns))
	copy(out, d.conns)
	return out
}

// Touching returns the connections whose source or target belongs to the
// given type, in creation order.
func (d *Drawing) Touching(typeID string) []Connection {
	idx := d.byType[typeID]
	out := make([]Connection, len(idx))
	for i, j := range idx {
		out[i] = d.conns[j].ID
	}
	return out
}

// Revalidate re-routes every connection touching the given type and returns
// how many were revalidated. Connections between other types are left alone,
// so the cost is proportional to the moved type's degree.
func (d *Drawing) Revalidate(typeID string) int {
	idx := d.byType[typeID]
	for _, j := range idx {
		d.connector.Revalidate(d.conns[j].ID)
	}
	return len(idx)
}

// Related returns the types connected to typeID, in the order the
// relationship was first drawn. A self-referencing type lists itself.
func (d *Drawing) Related(typeID string) []string {
	out := make([]string, len(d.related[typeID]))
	copy(out, d.related[typeID])
	return out
}

// IsRelated reports whether a and b are connected in either direction.
func (d *Drawing) IsRelated(a, b string) bool {
	return d.seen[[2]string{a, b}]
}

// Relations returns the full connected-to map.
func (d *Drawing) Relations() map[string][]string {
	out := make(map[string][]string, len(d.related))
	for k := range d.related {
		out[k] = d.Related(k)
	}
	return out
}

// Destroy removes every connection from the surface and forgets the
// neighbourhood. The drawing must not be used afterwards.
func (d *Drawing) Destroy() {
	for _, c := range d.conns {
		d.connector.Destroy(c.ID)
	}
	d.conns = nil
	d.byType = map[string][]int{}
	d.related = map[string][]string{}
	d.seen = map[[2]string]bool{}
}
