package schema

import (
	"slices"
)

// AssetTypeID is the reserved id of the synthetic Asset entity type.
// Asset-only reference fields always resolve to it, whether or not the model
// currently contains it.
const AssetTypeID = "Asset"

// FieldKind distinguishes scalar fields from single- and multi-valued
// references.
type FieldKind string

const (
	// KindScalar is a plain value field (text, number, date, ...).
	KindScalar FieldKind = "scalar"
	// KindReference links to exactly one entry of another type.
	KindReference FieldKind = "reference"
	// KindReferences links to a list of entries.
	KindReferences FieldKind = "references"
)

// IsReference reports whether the kind carries links to other entity types.
func (k FieldKind) IsReference() bool {
	return k == KindReference || k == KindReferences
}

// TargetConstraint restricts what a reference field may point at.
// A nil constraint, or one with neither AssetOnly nor TypeIDs set, means
// "any type registered in the model".
type TargetConstraint struct {
	AssetOnly bool     `json:"asset_only,omitempty" yaml:"asset_only,omitempty" toml:"asset_only,omitempty"`
	TypeIDs   []string `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`
}

// AnyType returns the unconstrained target. It is nil on purpose so that a
// missing "target" key in a model file means the same thing.
func AnyType() *TargetConstraint { return nil }

// AssetOnly returns a constraint that only admits the Asset pseudo-type.
func AssetOnly() *TargetConstraint { return &TargetConstraint{AssetOnly: true} }

// Types returns a constraint admitting the given entity type ids.
func Types(ids ...string) *TargetConstraint { return &TargetConstraint{TypeIDs: ids} }

// IsAny reports whether the constraint admits every registered type.
func (c *TargetConstraint) IsAny() bool {
	return c == nil || (!c.AssetOnly && len(c.TypeIDs) == 0)
}

// Field is a single field of an entity type.
type Field struct {
	ID     string            `json:"id" yaml:"id" toml:"id"`
	Name   string            `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Kind   FieldKind         `json:"kind" yaml:"kind" toml:"kind"`
	Target *TargetConstraint `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty"`
}

// IsReference reports whether the field links to other entity types.
func (f Field) IsReference() bool { return f.Kind.IsReference() }

// DisplayName returns the name if set, otherwise the ID.
func (f Field) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// EntityType is a node of the diagram: a record type with ordered fields.
//
// Internal types (such as the injected Asset type) are always drawn but are
// hidden from user-facing type pickers.
type EntityType struct {
	ID       string  `json:"id" yaml:"id" toml:"id"`
	Name     string  `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Fields   []Field `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Internal bool    `json:"internal,omitempty" yaml:"internal,omitempty" toml:"internal,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (t EntityType) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// FieldCount returns the number of fields; the layout engine uses it as a
// proxy for rendered card height.
func (t EntityType) FieldCount() int { return len(t.Fields) }

// Field returns the field with the given id.
func (t EntityType) Field(id string) (Field, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Model is the ordered content model.
//
// The zero value is an empty model and is ready to use. Model is treated as
// immutable for the lifetime of a diagram; edits produce a new Model.
type Model struct {
	Types []EntityType `json:"types" yaml:"types" toml:"types"`
}

// New creates a model from the given types, preserving their order.
func New(types ...EntityType) Model {
	return Model{Types: slices.Clone(types)}
}

// Len returns the number of entity types.
func (m Model) Len() int { return len(m.Types) }

// IsEmpty reports whether the model has no entity types.
func (m Model) IsEmpty() bool { return len(m.Types) == 0 }

// IDs returns all entity type ids in model order.
func (m Model) IDs() []string {
	ids := make([]string, len(m.Types))
	for i, t := range m.Types {
		ids[i] = t.ID
	}
	return ids
}

// Registered returns the set of entity type ids in the model.
func (m Model) Registered() map[string]bool {
	set := make(map[string]bool, len(m.Types))
	for _, t := range m.Types {
		set[t.ID] = true
	}
	return set
}

// Lookup returns the entity type with the given id.
func (m Model) Lookup(id string) (EntityType, bool) {
	for _, t := range m.Types {
		if t.ID == id {
			return t, true
		}
	}
	return EntityType{}, false
}

// Index returns the model position of the entity type, or -1.
func (m Model) Index(id string) int {
	return slices.IndexFunc(m.Types, func(t EntityType) bool { return t.ID == id })
}

// Selectable returns the non-internal types in model order.
func (m Model) Selectable() []EntityType {
	out := make([]EntityType, 0, len(m.Types))
	for _, t := range m.Types {
		if !t.Internal {
			out = append(out, t)
		}
	}
	return out
}

// WithAsset returns a model that contains the internal Asset pseudo-type.
// If an entity type with id AssetTypeID is already present the model is
// returned unchanged; otherwise the Asset type is appended last so the order
// of the imported types is untouched.
func (m Model) WithAsset() Model {
	if m.Index(AssetTypeID) >= 0 {
		return m
	}
	types := make([]EntityType, 0, len(m.Types)+1)
	types = append(types, m.Types...)
	types = append(types, AssetType())
	return Model{Types: types}
}

// AssetType returns the synthetic Asset entity type. Its fields mirror the
// metadata every CMS asset carries.
func AssetType() EntityType {
	return EntityType{
		ID:       AssetTypeID,
		Name:     "Asset",
		Internal: true,
		Fields: []Field{
			{ID: "title", Name: "Title", Kind: KindScalar},
			{ID: "description", Name: "Description", Kind: KindScalar},
			{ID: "file", Name: "File", Kind: KindScalar},
		},
	}
}
