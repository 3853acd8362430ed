package layout

import (
	"errors"

	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// ErrUnknownType is returned by [Store.Set] and [Store.Move] for an id that
// is not part of the store's model. Writing it would break the invariant that
// the store's keys equal the model's type ids.
var ErrUnknownType = errors.New("unknown entity type")

// Source records where a store's initial positions came from.
type Source string

const (
	// SourceLayout means the positions were computed by [Initial].
	SourceLayout Source = "layout"
	// SourceSaved means a previously saved map was reused as-is.
	SourceSaved Source = "saved"
)

// Store is the mutable position map of one diagram.
//
// Its key set always equals the model's type ids. Store is not safe for
// concurrent use; the hosting view owns it from a single goroutine.
type Store struct {
	ids       []string
	positions PositionMap
	source    Source
}

// NewStore creates the store for model.
//
// If saved covers exactly the model's type ids it is reused and the layout
// engine is skipped. Otherwise the model changed since the map was saved and
// positions are recomputed from scratch with [Initial].
func NewStore(model schema.Model, saved PositionMap, metrics Metrics) *Store {
	s := &Store{ids: model.IDs()}
	if saved != nil && saved.Covers(model) {
		s.positions = saved.Clone()
		s.source = SourceSaved
		return s
	}
	s.positions = Initial(model, metrics)
	s.source = SourceLayout
	return s
}

// Source reports where the initial positions came from.
func (s *Store) Source() Source { return s.source }

// Len returns the number of stored positions.
func (s *Store) Len() int { return len(s.positions) }

// IDs returns the stored type ids in model order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Get returns the position of the given type.
func (s *Store) Get(id string) (Position, bool) {
	p, ok := s.positions[id]
	return p, ok
}

// Set overwrites the position of exactly one type.
func (s *Store) Set(id string, p Position) error {
	if _, ok := s.positions[id]; !ok {
		return unknown(id)
	}
	s.positions[id] = p
	return nil
}

// Move applies a drag delta to one type and returns its new position.
func (s *Store) Move(id string, dx, dy float64) (Position, error) {
	p, ok := s.positions[id]
	if !ok {
		return Position{}, unknown(id)
	}
	p = p.Add(dx, dy)
	s.positions[id] = p
	return p, nil
}

// Snapshot returns a copy of all positions, suitable for saving.
func (s *Store) Snapshot() PositionMap {
	return s.positions.Clone()
}

func unknown(id string) error {
	return typeerrors.Wrap(typeerrors.ErrCodeUnknownType, ErrUnknownType, "type %s", id)
}
