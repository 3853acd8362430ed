package viewport

import "math"

// DefaultPadding is the outer padding kept free around a fitted diagram.
const DefaultPadding = 80.0

// Box is the measured bounding box of one card in layout space.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge of the box.
func (b Box) Right() float64 { return b.Left + b.Width }

// Bottom returns the bottom edge of the box.
func (b Box) Bottom() float64 { return b.Top + b.Height }

// Size is the size of the visible container.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Fit is the camera transform that shows the whole diagram.
type Fit struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Bounds returns the union of all boxes, using their full extents.
// ok is false when boxes is empty.
func Bounds(boxes []Box) (b Box, ok bool) {
	if len(boxes) == 0 {
		return Box{}, false
	}
	minLeft, minTop := math.Inf(1), math.Inf(1)
	maxRight, maxBottom := math.Inf(-1), math.Inf(-1)
	for _, bx := range boxes {
		minLeft = math.Min(minLeft, bx.Left)
		minTop = math.Min(minTop, bx.Top)
		maxRight = math.Max(maxRight, bx.Right())
		maxBottom = math.Max(maxBottom, bx.Bottom())
	}
	return Box{Left: minLeft, Top: minTop, Width: maxRight - minLeft, Height: maxBottom - minTop}, true
}

// Compute returns the transform that centres boxes inside viewport, keeping
// padding free around them. The scale is clamped to 1.
//
// ok is false when there are no boxes; the caller must not touch the camera
// in that case. Zero-sized bounds (a single empty box) keep scale 1.
func Compute(boxes []Box, viewport Size, padding float64) (f Fit, ok bool) {
	b, ok := Bounds(boxes)
	if !ok {
		return Fit{}, false
	}

	availW := viewport.Width - padding
	availH := viewport.Height - padding

	scale := 1.0
	if b.Width > 0 {
		scale = math.Min(scale, availW/b.Width)
	}
	if b.Height > 0 {
		scale = math.Min(scale, availH/b.Height)
	}

	return Fit{
		Scale:   scale,
		OffsetX: (availW-b.Width)/2 - b.Left + padding/2,
		OffsetY: (availH-b.Height)/2 - b.Top + padding/2,
	}, true
}
