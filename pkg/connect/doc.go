// Package connect chooses how reference edges are drawn and draws them
// through an opaque [Connector].
//
// # Strategies
//
// [ChooseStrategy] compares the resolved edge count against [Threshold]:
//
//	count <= 100   Detailed: one connection per resolved edge, anchored at the
//	               source field's handle
//	count  > 100   Light: one connection per unordered pair of types, anchored
//	               card to card
//
// # Drawing
//
// [Draw] returns a [Drawing] that indexes every connection by the entity
// types it touches. When a card moves, [Drawing.Revalidate] asks the
// connector to re-route only the connections touching that type:
//
//	d := connect.Draw(refs.Resolve(m), connect.ChooseStrategy(n), connector)
//	d.Revalidate("post")
//
// A Drawing also records the symmetric "connected-to" relation between
// types, used to highlight a type's neighbourhood on hover.
package connect
