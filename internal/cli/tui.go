package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/typegraph/pkg/diagram"
	"github.com/matzehuels/typegraph/pkg/refs"
	"github.com/matzehuels/typegraph/pkg/schema"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listRelatedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	// browseTick drives the camera controller's silent window.
	browseTick = 50 * time.Millisecond
	// dragStep is how far one key press moves a card.
	dragStep = 40.0
	// zoomStep is the factor of one manual zoom key press.
	zoomStep = 1.25
	// cellWidth and cellHeight convert terminal cells to layout pixels.
	cellWidth  = 8.0
	cellHeight = 16.0
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(browseTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// termCamera is the camera of the terminal browser.
type termCamera struct {
	transform viewport.Transform
	silent    bool
}

func (c *termCamera) Zoom(scale float64) { c.transform.Scale = scale }
func (c *termCamera) Pan(x, y float64)   { c.transform.X, c.transform.Y = x, y }
func (c *termCamera) SetSilent(on bool)  { c.silent = on }

// =============================================================================
// BrowseModel - Interactive neighbourhood browser
// =============================================================================

// BrowseModel is the bubbletea model for browsing a diagram. The selected
// type's neighbourhood is highlighted; cards can be dragged with the arrow
// keys and the camera re-centred with f.
type BrowseModel struct {
	Diagram  *diagram.Diagram
	Cursor   int
	Offset   int
	Height   int
	Viewport viewport.Size

	camera     *termCamera
	controller *viewport.Controller

	// Status is the last action, shown below the table.
	Status string
	// UserMoves counts manual camera moves that were forwarded.
	UserMoves int
	// Suppressed counts manual camera moves swallowed by the silent window.
	Suppressed int
}

// NewBrowseModel creates a browser over d. d must have measured boxes.
func NewBrowseModel(d *diagram.Diagram, window time.Duration, clock func() time.Time) BrowseModel {
	camera := &termCamera{transform: viewport.Transform{Scale: 1}}
	m := BrowseModel{
		Diagram:  d,
		Height:   15,
		Viewport: viewport.Size{Width: 80 * cellWidth, Height: 24 * cellHeight},
		camera:   camera,
	}
	opts := []viewport.ControllerOption{viewport.WithWindow(window)}
	if clock != nil {
		opts = append(opts, viewport.WithClock(clock))
	}
	m.controller = viewport.NewController(camera, opts...)
	return m
}

// Camera returns the current camera transform.
func (m BrowseModel) Camera() viewport.Transform { return m.camera.transform }

// State returns the camera controller state.
func (m BrowseModel) State() viewport.State { return m.controller.State() }

func (m BrowseModel) types() []schema.EntityType { return m.Diagram.Model().Types }

// Selected returns the id of the type under the cursor.
func (m BrowseModel) Selected() string {
	types := m.types()
	if len(types) == 0 {
		return ""
	}
	return types[m.Cursor].ID
}

func (m BrowseModel) Init() tea.Cmd {
	return tick()
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.controller.Tick()
		return m, tick()

	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
		m.Viewport = viewport.Size{Width: float64(msg.Width) * cellWidth, Height: float64(msg.Height) * cellHeight}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "f":
			m.center()
		case "left", "h":
			m.drag(-dragStep, 0)
		case "right", "l":
			m.drag(dragStep, 0)
		case "K":
			m.drag(0, -dragStep)
		case "J":
			m.drag(0, dragStep)
		case "+", "=":
			m.zoom(zoomStep)
		case "-":
			m.zoom(1 / zoomStep)
		}
	}
	return m, nil
}

func (m *BrowseModel) moveCursor(delta int) {
	n := len(m.types())
	if n == 0 {
		return
	}
	m.Cursor += delta
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *BrowseModel) center() {
	moved, err := m.Diagram.Center(m.controller, m.Viewport)
	switch {
	case err != nil:
		m.Status = err.Error()
	case !moved:
		m.Status = "empty diagram"
	default:
		m.Status = fmt.Sprintf("centred at %.2fx", m.camera.transform.Scale)
	}
}

func (m *BrowseModel) drag(dx, dy float64) {
	id := m.Selected()
	if id == "" {
		return
	}
	p, n, err := m.Diagram.Drag(id, dx, dy)
	if err != nil {
		m.Status = err.Error()
		return
	}
	m.Status = fmt.Sprintf("moved %s to (%g, %g), %d connections re-routed", id, p.X, p.Y, n)
}

// zoom simulates a manual camera change, which the controller forwards
// unless a programmatic move is still settling.
func (m *BrowseModel) zoom(factor float64) {
	t := m.camera.transform
	t.Scale *= factor
	if m.controller.Notify(t) {
		m.camera.transform = t
		m.UserMoves++
		m.Status = fmt.Sprintf("zoom %.2fx", t.Scale)
		return
	}
	m.Suppressed++
	m.Status = "camera settling, zoom ignored"
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Content Model"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d types · %d connections · %s", len(m.types()), m.Diagram.Count(), m.Diagram.Strategy())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ←/→ J/K drag  f fit  +/- zoom  q quit"))
	b.WriteString("\n\n")

	types := m.types()
	selected := m.Selected()
	related := make(map[string]bool)
	for _, id := range m.Diagram.Related(selected) {
		related[id] = true
	}

	end := m.Offset + m.Height
	if end > len(types) {
		end = len(types)
	}
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := types[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		p, _ := m.Diagram.Position(t.ID)
		rows = append(rows, []string{cursor, t.DisplayName(), fmt.Sprint(t.FieldCount()), fmt.Sprintf("%g,%g", p.X, p.Y)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Type", "Fields", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(types) {
				return lipgloss.NewStyle()
			}
			switch id := types[idx].ID; {
			case id == selected:
				return listSelectedStyle
			case related[id]:
				return listRelatedStyle
			default:
				return listDimStyle
			}
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if sel, ok := m.Diagram.Model().Lookup(selected); ok {
		b.WriteString(m.fieldsView(sel))
	}

	cam := m.camera.transform
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("camera %.2fx (%.0f, %.0f) · %s", cam.Scale, cam.X, cam.Y, m.controller.State())))
	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(listNormalStyle.Render(m.Status))
	}
	return b.String()
}

// fieldsView lists the reference fields of t and their resolved targets.
func (m BrowseModel) fieldsView(t schema.EntityType) string {
	targets := make(map[string][]string)
	for _, e := range refs.ResolveType(t, m.Diagram.Model()) {
		targets[e.SourceFieldID] = append(targets[e.SourceFieldID], e.TargetTypeID)
	}

	var b strings.Builder
	for _, f := range t.Fields {
		if !f.IsReference() {
			continue
		}
		to := strings.Join(targets[f.ID], ", ")
		if to == "" {
			to = "(no targets)"
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", listNormalStyle.Render(f.DisplayName()), listDimStyle.Render(iconArrow), listRelatedStyle.Render(to)))
	}
	return b.String()
}
