// Package refs derives the reference graph of a content model.
//
// A reference field resolves to zero or more target entity types according
// to its [schema.TargetConstraint]. [Resolve] walks a whole model and returns
// every resolved [Edge]; [Count] returns how many there are. Both are built on
// [ResolveField], which is the only place the resolution rule is implemented,
// so the edge count that picks a drawing strategy always matches the edges
// that are drawn.
//
// Resolution never fails:
//   - an unconstrained reference points at every registered type, itself included
//   - an asset-only reference points at [schema.AssetTypeID]
//   - explicit targets missing from the model are dropped silently
package refs

import (
	"github.com/matzehuels/typegraph/pkg/schema"
)

// Edge is a resolved reference from a field of one entity type to another
// entity type. Edges are derived on demand and never stored with the model.
type Edge struct {
	SourceTypeID  string `json:"source_type"`
	SourceFieldID string `json:"source_field"`
	TargetTypeID  string `json:"target_type"`
}

// IsSelf reports whether the edge points back at its own entity type.
func (e Edge) IsSelf() bool { return e.SourceTypeID == e.TargetTypeID }

// Resolver resolves reference fields against a fixed model. Building the
// registered-id set once keeps [Resolver.Type] linear in the number of
// resolved targets.
type Resolver struct {
	ids        []string
	registered map[string]bool
}

// NewResolver creates a resolver for m.
func NewResolver(m schema.Model) *Resolver {
	return &Resolver{
		ids:        m.IDs(),
		registered: m.Registered(),
	}
}

// Field returns the target type ids of f in resolution order.
// Scalar fields resolve to nothing.
func (r *Resolver) Field(f schema.Field) []string {
	if !f.IsReference() {
		return nil
	}

	c := f.Target
	if c != nil && c.AssetOnly {
		return []string{schema.AssetTypeID}
	}
	if c.IsAny() {
		out := make([]string, len(r.ids))
		copy(out, r.ids)
		return out
	}

	out := make([]string, 0, len(c.TypeIDs))
	for _, id := range c.TypeIDs {
		if r.registered[id] {
			out = append(out, id)
		}
	}
	return out
}

// Type returns the resolved edges of t in field order, then target order.
func (r *Resolver) Type(t schema.EntityType) []Edge {
	var edges []Edge
	for _, f := range t.Fields {
		for _, target := range r.Field(f) {
			edges = append(edges, Edge{
				SourceTypeID:  t.ID,
				SourceFieldID: f.ID,
				TargetTypeID:  target,
			})
		}
	}
	return edges
}

// ResolveField resolves a single field of a type that belongs to m.
func ResolveField(f schema.Field, m schema.Model) []string {
	return NewResolver(m).Field(f)
}

// ResolveType resolves every reference field of t against m.
func ResolveType(t schema.EntityType, m schema.Model) []Edge {
	return NewResolver(m).Type(t)
}

// Resolve returns every resolved edge of the model, in model order. Multiple
// edges between the same pair of types are preserved.
func Resolve(m schema.Model) []Edge {
	r := NewResolver(m)
	var edges []Edge
	for _, t := range m.Types {
		edges = append(edges, r.Type(t)...)
	}
	return edges
}

// Count returns the number of edges [Resolve] would return. No
// deduplication is applied.
func Count(m schema.Model) int {
	r := NewResolver(m)
	n := 0
	for _, t := range m.Types {
		for _, f := range t.Fields {
			n += len(r.Field(f))
		}
	}
	return n
}
