package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/diagram"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/schema"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBrowser(t *testing.T) (BrowseModel, *fakeClock) {
	t.Helper()
	model, err := schema.ReadModel(strings.NewReader(blogModel), schema.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	d := diagram.New(model, connect.NewRecorder(), diagram.Options{WithAsset: true})
	t.Cleanup(d.Close)
	d.MeasureFromLayout(layout.DefaultMetrics())

	clock := &fakeClock{now: time.Unix(1000, 0)}
	return NewBrowseModel(d, viewport.DefaultSilentWindow, clock.Now), clock
}

func press(m BrowseModel, keys ...string) BrowseModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(BrowseModel)
	}
	return m
}

func TestBrowseCursor(t *testing.T) {
	m, _ := newTestBrowser(t)
	types := m.Diagram.Model().Types

	if got := m.Selected(); got != types[0].ID {
		t.Errorf("Selected() = %q, want %q", got, types[0].ID)
	}
	m = press(m, "down", "j")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", m.Cursor)
	}
	m = press(m, "down", "down", "down", "down")
	if m.Cursor != len(types)-1 {
		t.Errorf("Cursor = %d, want clamped to %d", m.Cursor, len(types)-1)
	}
	m = press(m, "up", "k", "k", "k", "k", "k")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}
}

func TestBrowseDrag(t *testing.T) {
	m, _ := newTestBrowser(t)
	id := m.Selected()
	before, _ := m.Diagram.Position(id)

	m = press(m, "right", "J")
	after, _ := m.Diagram.Position(id)
	want := layout.Position{X: before.X + dragStep, Y: before.Y + dragStep}
	if after != want {
		t.Errorf("Position(%s) = %+v, want %+v", id, after, want)
	}
	if !strings.Contains(m.Status, "moved "+id) {
		t.Errorf("Status = %q", m.Status)
	}
}

func TestBrowseCenterSuppressesZoom(t *testing.T) {
	m, clock := newTestBrowser(t)

	m = press(m, "f")
	if m.State() != viewport.ProgrammaticMove {
		t.Fatalf("State() = %v, want programmatic move", m.State())
	}
	centred := m.Camera()
	if centred.Scale <= 0 || centred.Scale > 1 {
		t.Errorf("Scale = %v, want (0, 1]", centred.Scale)
	}

	m = press(m, "+")
	if m.Suppressed != 1 || m.UserMoves != 0 {
		t.Errorf("Suppressed = %d UserMoves = %d, want 1 0", m.Suppressed, m.UserMoves)
	}
	if m.Camera() != centred {
		t.Errorf("Camera() = %+v, suppressed zoom must not move it", m.Camera())
	}

	clock.Advance(viewport.DefaultSilentWindow)
	next, _ := m.Update(tickMsg(clock.Now()))
	m = next.(BrowseModel)
	if m.State() != viewport.Idle {
		t.Fatalf("State() = %v, want idle after the window", m.State())
	}

	m = press(m, "+")
	if m.UserMoves != 1 {
		t.Errorf("UserMoves = %d, want 1", m.UserMoves)
	}
	if got, want := m.Camera().Scale, centred.Scale*zoomStep; got != want {
		t.Errorf("Scale = %v, want %v", got, want)
	}
}

func TestBrowseView(t *testing.T) {
	m, _ := newTestBrowser(t)
	view := m.View()

	for _, want := range []string{"Post", "Author", "Tag", "author", "idle"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestBrowseQuit(t *testing.T) {
	m, _ := newTestBrowser(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
