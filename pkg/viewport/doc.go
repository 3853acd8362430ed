// Package viewport computes the camera transform that fits a diagram into
// the visible area and applies it to an opaque camera.
//
// [Compute] is a pure function of measured card boxes. It never zooms in past
// 100%: small diagrams are centred at their natural size, large ones are
// scaled down.
//
// [Controller] applies a [Fit] to a [Camera] inside a short "silent" window
// so the camera's change notifications caused by the programmatic move do
// not feed back into layout re-measurement.
package viewport
