// Package diagram ties the engine together into one hosting-view session.
//
// A [Diagram] owns the position store, the drawn connections and the
// measured card boxes of one rendered content model. It enforces the two
// ordering rules of the engine:
//
//   - Positions are fully applied to the store before the first connection
//     is drawn ([New] runs the layout, then resolves, counts and draws).
//   - The viewport is fitted only after every card has been measured
//     ([Diagram.Fit] and [Diagram.Center] return [ErrNotMeasured] otherwise).
//
// Drags are applied with [Diagram.Drag], which updates exactly one position
// and re-routes only the connections touching the dragged type.
//
// A Diagram is not safe for concurrent use.
package diagram
