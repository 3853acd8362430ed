package schema

import (
	"errors"
	"fmt"

	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
)

var (
	// ErrDuplicateTypeID is returned by [Model.Validate] when two entity types
	// share an id. Type ids must be unique within a model.
	ErrDuplicateTypeID = errors.New("duplicate entity type id")

	// ErrDuplicateFieldID is returned by [Model.Validate] when two fields of
	// the same entity type share an id.
	ErrDuplicateFieldID = errors.New("duplicate field id")

	// ErrUnknownFieldKind is returned by [Model.Validate] for a field whose
	// kind is not scalar, reference or references.
	ErrUnknownFieldKind = errors.New("unknown field kind")

	// ErrScalarTarget is returned by [Model.Validate] when a scalar field
	// carries a target constraint.
	ErrScalarTarget = errors.New("scalar field cannot have a target constraint")

	// ErrConflictingTarget is returned by [Model.Validate] when a constraint
	// is both asset-only and lists explicit types.
	ErrConflictingTarget = errors.New("target constraint cannot be asset-only and list types")
)

// Validate checks the structural rules the diagram engine relies on.
//
// Validate does not reject references to types that are missing from the
// model: those are dropped silently during resolution because content models
// are routinely exported partially.
func (m Model) Validate() error {
	seen := make(map[string]bool, len(m.Types))
	for _, t := range m.Types {
		if err := typeerrors.ValidateID("type", t.ID); err != nil {
			return err
		}
		if seen[t.ID] {
			return invalid(ErrDuplicateTypeID, "type %s", t.ID)
		}
		seen[t.ID] = true

		if err := t.validateFields(); err != nil {
			return err
		}
	}
	return nil
}

func (t EntityType) validateFields() error {
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if err := typeerrors.ValidateID("field", f.ID); err != nil {
			return err
		}
		if seen[f.ID] {
			return invalid(ErrDuplicateFieldID, "type %s field %s", t.ID, f.ID)
		}
		seen[f.ID] = true

		switch f.Kind {
		case KindScalar:
			if f.Target != nil {
				return invalid(ErrScalarTarget, "type %s field %s", t.ID, f.ID)
			}
		case KindReference, KindReferences:
			if f.Target != nil && f.Target.AssetOnly && len(f.Target.TypeIDs) > 0 {
				return invalid(ErrConflictingTarget, "type %s field %s", t.ID, f.ID)
			}
		default:
			return invalid(ErrUnknownFieldKind, "type %s field %s: %q", t.ID, f.ID, f.Kind)
		}
	}
	return nil
}

func invalid(sentinel error, format string, args ...any) error {
	return typeerrors.Wrap(typeerrors.ErrCodeInvalidModel, sentinel, "%s", fmt.Sprintf(format, args...))
}
