package viewport

import (
	"time"
)

// DefaultSilentWindow is how long camera notifications are suppressed after
// a programmatic move.
const DefaultSilentWindow = 250 * time.Millisecond

// Camera is the pan/zoom capability of the rendering surface.
type Camera interface {
	Zoom(scale float64)
	Pan(x, y float64)
	// SetSilent turns the camera's own change notifications off or on.
	SetSilent(silent bool)
}

// State is the controller's suppression state.
type State int

const (
	// Idle forwards every camera notification.
	Idle State = iota
	// ProgrammaticMove suppresses notifications until the deadline.
	ProgrammaticMove
)

// String returns the state name.
func (s State) String() string {
	if s == ProgrammaticMove {
		return "programmatic-move"
	}
	return "idle"
}

// Transform is a camera state reported by a change notification.
type Transform struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Controller applies fits to a camera and filters its change notifications.
//
// Its state machine is idle → programmaticMove(deadline) → idle. The window
// is time-bounded: it ends at the first Notify or Tick at or after the
// deadline, not when a particular event arrives. Controller is not safe for
// concurrent use.
type Controller struct {
	camera   Camera
	window   time.Duration
	now      func() time.Time
	onChange func(Transform)

	state    State
	deadline time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithWindow sets the length of the silent window.
func WithWindow(d time.Duration) ControllerOption {
	return func(c *Controller) { c.window = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithOnChange registers the handler for user-driven camera changes.
func WithOnChange(fn func(Transform)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates an idle controller for camera.
func NewController(camera Camera, opts ...ControllerOption) *Controller {
	c := &Controller{
		camera: camera,
		window: DefaultSilentWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Deadline returns the end of the current silent window. It is the zero
// time while idle.
func (c *Controller) Deadline() time.Time {
	if c.state == Idle {
		return time.Time{}
	}
	return c.deadline
}

// Apply moves the camera to f inside a fresh silent window. Applying again
// during a window extends it.
func (c *Controller) Apply(f Fit) {
	c.state = ProgrammaticMove
	c.deadline = c.now().Add(c.window)
	c.camera.SetSilent(true)
	c.camera.Zoom(f.Scale)
	c.camera.Pan(f.OffsetX, f.OffsetY)
}

// Notify handles a camera change notification. It returns true if the change
// was forwarded to the OnChange handler and false if it was suppressed.
func (c *Controller) Notify(t Transform) bool {
	if c.Tick() == ProgrammaticMove {
		return false
	}
	if c.onChange != nil {
		c.onChange(t)
	}
	return true
}

// Tick closes the silent window if its deadline has passed and returns the
// resulting state.
func (c *Controller) Tick() State {
	if c.state == ProgrammaticMove && !c.now().Before(c.deadline) {
		c.state = Idle
		c.deadline = time.Time{}
		c.camera.SetSilent(false)
	}
	return c.state
}
