package diagram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matzehuels/typegraph/pkg/connect"
	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/schema"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

func ref(id string, target *schema.TargetConstraint) schema.Field {
	return schema.Field{ID: id, Kind: schema.KindReference, Target: target}
}

func scalar(id string) schema.Field {
	return schema.Field{ID: id, Kind: schema.KindScalar}
}

// blogModel is the three-type example: A has a scalar and an unconstrained
// reference, B and C have no fields.
func blogModel() schema.Model {
	return schema.New(
		schema.EntityType{ID: "A", Fields: []schema.Field{scalar("title"), ref("link", schema.AnyType())}},
		schema.EntityType{ID: "B"},
		schema.EntityType{ID: "C"},
	)
}

// chainModel has two disjoint pairs: A→B and C→D.
func chainModel() schema.Model {
	return schema.New(
		schema.EntityType{ID: "A", Fields: []schema.Field{ref("b", schema.Types("B"))}},
		schema.EntityType{ID: "B"},
		schema.EntityType{ID: "C", Fields: []schema.Field{ref("d", schema.Types("D"))}},
		schema.EntityType{ID: "D"},
	)
}

func TestNewEndToEnd(t *testing.T) {
	rec := connect.NewRecorder()
	d := New(blogModel(), rec, Options{})

	if d.Count() != 3 {
		t.Errorf("Count() = %d, want 3", d.Count())
	}
	wantTargets := []string{"A", "B", "C"}
	for i, e := range d.Edges() {
		if e.SourceTypeID != "A" || e.SourceFieldID != "link" || e.TargetTypeID != wantTargets[i] {
			t.Errorf("Edges()[%d] = %+v, want A.link→%s", i, e, wantTargets[i])
		}
	}
	if d.Strategy() != connect.Detailed {
		t.Errorf("Strategy() = %v, want %v", d.Strategy(), connect.Detailed)
	}
	if len(rec.Live()) != 3 {
		t.Errorf("live connections = %d, want 3", len(rec.Live()))
	}

	step := layout.DefaultMetrics().ColumnStep()
	for i, id := range []string{"A", "B", "C"} {
		p, ok := d.Position(id)
		if !ok {
			t.Fatalf("Position(%s) missing", id)
		}
		if want := (layout.Position{X: float64(i) * step}); p != want {
			t.Errorf("Position(%s) = %+v, want %+v", id, p, want)
		}
	}
}

func TestNewForcedStrategy(t *testing.T) {
	d := New(blogModel(), connect.NewRecorder(), Options{Strategy: connect.Light})
	if d.Strategy() != connect.Light {
		t.Errorf("Strategy() = %v, want %v", d.Strategy(), connect.Light)
	}
	if d.Drawing().Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Drawing().Len())
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	fields := make([]schema.Field, connect.Threshold+1)
	for i := range fields {
		fields[i] = ref(fmt.Sprintf("f%d", i), schema.Types("B"))
	}
	dense := schema.New(schema.EntityType{ID: "A", Fields: fields}, schema.EntityType{ID: "B"})

	tests := []struct {
		name  string
		model schema.Model
		want  connect.Strategy
	}{
		{"sparse", blogModel(), connect.Detailed},
		{"dense", dense, connect.Light},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.model, connect.NewRecorder(), Options{Strategy: "bogus"})
			if d.Strategy() != tt.want {
				t.Errorf("Strategy() = %v, want %v", d.Strategy(), tt.want)
			}
		})
	}
}

func TestNewWithAsset(t *testing.T) {
	m := schema.New(schema.EntityType{ID: "Post", Fields: []schema.Field{ref("cover", schema.AssetOnly())}})
	d := New(m, connect.NewRecorder(), Options{WithAsset: true})

	if _, ok := d.Position(schema.AssetTypeID); !ok {
		t.Errorf("Asset type not positioned")
	}
	if !d.Drawing().IsRelated("Post", schema.AssetTypeID) {
		t.Errorf("Post not related to Asset")
	}
	if len(d.Model().Selectable()) != 1 {
		t.Errorf("Selectable() = %d types, want 1", len(d.Model().Selectable()))
	}
}

func TestNewUsesSavedPositions(t *testing.T) {
	saved := layout.PositionMap{
		"A": {X: 5, Y: 5},
		"B": {X: 500, Y: 10},
		"C": {X: -20, Y: 300},
	}
	d := New(blogModel(), connect.NewRecorder(), Options{Saved: saved})
	for id, want := range saved {
		if got, _ := d.Position(id); got != want {
			t.Errorf("Position(%s) = %+v, want %+v", id, got, want)
		}
	}
}

func TestDragReroutesTouchingOnly(t *testing.T) {
	rec := connect.NewRecorder()
	d := New(chainModel(), rec, Options{})
	before, _ := d.Position("B")

	p, n, err := d.Drag("B", 10, -5)
	if err != nil {
		t.Fatalf("Drag: %v", err)
	}
	if want := before.Add(10, -5); p != want {
		t.Errorf("Drag position = %+v, want %+v", p, want)
	}
	if n != 1 {
		t.Errorf("rerouted = %d, want 1", n)
	}
	if rec.TotalRevalidations() != 1 {
		t.Errorf("TotalRevalidations() = %d, want 1", rec.TotalRevalidations())
	}
	for _, id := range []string{"A", "C", "D"} {
		want := layout.Initial(chainModel(), layout.DefaultMetrics())[id]
		if got, _ := d.Position(id); got != want {
			t.Errorf("Position(%s) = %+v, want unchanged %+v", id, got, want)
		}
	}
}

func TestDragUnknown(t *testing.T) {
	d := New(chainModel(), connect.NewRecorder(), Options{})
	_, _, err := d.Drag("Z", 1, 1)
	if !errors.Is(err, layout.ErrUnknownType) {
		t.Errorf("Drag(Z) error = %v, want ErrUnknownType", err)
	}
}

func TestFitBeforeMeasure(t *testing.T) {
	d := New(chainModel(), connect.NewRecorder(), Options{})
	if err := d.Measure("A", viewport.Box{Width: 10, Height: 10}); err != nil {
		t.Fatalf("Measure: %v", err)
	}

	_, _, err := d.Fit(viewport.Size{Width: 800, Height: 600})
	if !errors.Is(err, ErrNotMeasured) {
		t.Errorf("Fit error = %v, want ErrNotMeasured", err)
	}
	if !typeerrors.Is(err, typeerrors.ErrCodeNotMeasured) {
		t.Errorf("Fit error code = %v, want %v", typeerrors.GetCode(err), typeerrors.ErrCodeNotMeasured)
	}
	if got := d.Unmeasured(); len(got) != 3 || got[0] != "B" {
		t.Errorf("Unmeasured() = %v, want [B C D]", got)
	}
}

func TestMeasureUnknown(t *testing.T) {
	d := New(chainModel(), connect.NewRecorder(), Options{})
	err := d.MeasureAll(map[string]viewport.Box{"A": {}, "Z": {}})
	if !typeerrors.Is(err, typeerrors.ErrCodeUnknownType) {
		t.Errorf("MeasureAll error = %v, want UNKNOWN_TYPE", err)
	}
	if d.Measured() || len(d.Boxes()) != 0 {
		t.Errorf("MeasureAll recorded boxes despite error")
	}
}

func TestFitAfterMeasure(t *testing.T) {
	m := layout.DefaultMetrics()
	d := New(blogModel(), connect.NewRecorder(), Options{})
	d.MeasureFromLayout(m)
	if !d.Measured() {
		t.Fatal("Measured() = false after MeasureFromLayout")
	}

	// Three cards in one row: width 2*360+280 = 1000, height of A.
	hA := m.CardHeight(blogModel().Types[0])
	f, ok, err := d.Fit(viewport.Size{Width: 1000 + viewport.DefaultPadding, Height: hA + viewport.DefaultPadding})
	if err != nil || !ok {
		t.Fatalf("Fit = %v, %v", ok, err)
	}
	if f.Scale != 1 {
		t.Errorf("Scale = %v, want 1", f.Scale)
	}
	if f.OffsetX != viewport.DefaultPadding/2 || f.OffsetY != viewport.DefaultPadding/2 {
		t.Errorf("Offset = (%v, %v), want (40, 40)", f.OffsetX, f.OffsetY)
	}
}

func TestFitZeroPadding(t *testing.T) {
	m := layout.DefaultMetrics()
	zero := 0.0
	d := New(blogModel(), connect.NewRecorder(), Options{Padding: &zero})
	d.MeasureFromLayout(m)

	hA := m.CardHeight(blogModel().Types[0])
	f, ok, err := d.Fit(viewport.Size{Width: 1000, Height: hA})
	if err != nil || !ok {
		t.Fatalf("Fit = %v, %v", ok, err)
	}
	if want := (viewport.Fit{Scale: 1}); f != want {
		t.Errorf("Fit = %+v, want %+v", f, want)
	}
}

func TestDragMovesMeasuredBox(t *testing.T) {
	d := New(blogModel(), connect.NewRecorder(), Options{})
	d.MeasureFromLayout(layout.DefaultMetrics())
	if _, _, err := d.Drag("A", -100, 50); err != nil {
		t.Fatal(err)
	}
	b := d.Boxes()[0]
	if b.Left != -100 || b.Top != 50 {
		t.Errorf("box A = %+v, want left -100 top 50", b)
	}
}

type camera struct {
	zooms  int
	silent bool
}

func (c *camera) Zoom(float64)         { c.zooms++ }
func (c *camera) Pan(float64, float64) {}
func (c *camera) SetSilent(s bool)     { c.silent = s }

func TestCenter(t *testing.T) {
	cam := &camera{}
	now := time.Unix(0, 0)
	ctrl := viewport.NewController(cam, viewport.WithClock(func() time.Time { return now }))

	d := New(blogModel(), connect.NewRecorder(), Options{})
	if _, err := d.Center(ctrl, viewport.Size{Width: 800, Height: 600}); !errors.Is(err, ErrNotMeasured) {
		t.Errorf("Center before measure error = %v, want ErrNotMeasured", err)
	}
	if cam.zooms != 0 {
		t.Errorf("camera zoomed before measurement")
	}

	d.MeasureFromLayout(layout.DefaultMetrics())
	moved, err := d.Center(ctrl, viewport.Size{Width: 800, Height: 600})
	if err != nil || !moved {
		t.Fatalf("Center = %v, %v", moved, err)
	}
	if cam.zooms != 1 || !cam.silent {
		t.Errorf("camera zooms=%d silent=%v, want 1 true", cam.zooms, cam.silent)
	}
	if ctrl.State() != viewport.ProgrammaticMove {
		t.Errorf("State() = %v, want %v", ctrl.State(), viewport.ProgrammaticMove)
	}
}

func TestEmptyDiagram(t *testing.T) {
	cam := &camera{}
	ctrl := viewport.NewController(cam)
	d := New(schema.New(), connect.NewRecorder(), Options{})

	if len(d.Positions()) != 0 {
		t.Errorf("Positions() = %v, want empty", d.Positions())
	}
	_, ok, err := d.Fit(viewport.Size{Width: 800, Height: 600})
	if ok || err != nil {
		t.Errorf("Fit = %v, %v, want false, nil", ok, err)
	}
	moved, err := d.Center(ctrl, viewport.Size{Width: 800, Height: 600})
	if moved || err != nil || cam.zooms != 0 {
		t.Errorf("Center on empty diagram moved the camera")
	}
}

func TestClose(t *testing.T) {
	rec := connect.NewRecorder()
	d := New(chainModel(), rec, Options{})
	d.Close()
	if len(rec.Live()) != 0 {
		t.Errorf("live connections after Close = %d, want 0", len(rec.Live()))
	}
	if got := d.Related("A"); len(got) != 0 {
		t.Errorf("Related(A) after Close = %v, want empty", got)
	}
}

func TestSnapshotJSON(t *testing.T) {
	d := New(chainModel(), connect.NewRecorder(), Options{})
	var buf bytes.Buffer
	if err := d.Snapshot().WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var got Snapshot
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.EdgeCount != 2 || got.Strategy != connect.Detailed {
		t.Errorf("snapshot = %d edges %v, want 2 detailed", got.EdgeCount, got.Strategy)
	}
	if len(got.Positions) != 4 || len(got.Connections) != 2 {
		t.Errorf("snapshot has %d positions %d connections, want 4 and 2", len(got.Positions), len(got.Connections))
	}
	if rel := got.Relations["B"]; len(rel) != 1 || rel[0] != "A" {
		t.Errorf("Relations[B] = %v, want [A]", rel)
	}
}
