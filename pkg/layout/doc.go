// Package layout assigns initial diagram positions to entity types and holds
// the mutable position store.
//
// # Initial Layout
//
// [Initial] is a deterministic greedy heuristic. It depends only on model
// order and each type's field count, which stands in for rendered card
// height:
//
//	height(t) = HeaderHeight + fields(t)*FieldHeight + CardMargin
//
// Models with at most three types are laid out in a single row. Larger models
// use floor(sqrt(n)) columns; each type, in model order, goes into the column
// that is currently shortest (lowest index on ties). Types are not sorted by
// size first, so the result is only locally balanced. Diagrams saved by
// earlier versions depend on this exact placement, so it must not change.
//
// # Position Store
//
// [Store] owns the live position of every type. It is written once from
// [Initial] (or from a previously saved map) and then one entry at a time by
// drag interactions:
//
//	store := layout.NewStore(model, nil, layout.DefaultMetrics())
//	pos, _ := store.Move("post", 12, -4)
package layout
