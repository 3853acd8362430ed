package layout

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/typegraph/pkg/schema"
)

// typesWithFields builds a model whose i-th type has counts[i] scalar fields.
func typesWithFields(counts ...int) schema.Model {
	var types []schema.EntityType
	for i, n := range counts {
		t := schema.EntityType{ID: fmt.Sprintf("t%d", i)}
		for j := 0; j < n; j++ {
			t.Fields = append(t.Fields, schema.Field{ID: fmt.Sprintf("f%d", j), Kind: schema.KindScalar})
		}
		types = append(types, t)
	}
	return schema.New(types...)
}

func TestInitialEmpty(t *testing.T) {
	got := Initial(schema.Model{}, DefaultMetrics())
	if got == nil || len(got) != 0 {
		t.Errorf("Initial(empty) = %v, want empty non-nil map", got)
	}
}

func TestInitialSingleRow(t *testing.T) {
	m := DefaultMetrics()
	step := m.CardWidth + m.XMargin

	for n := 1; n <= SingleRowLimit; n++ {
		t.Run(fmt.Sprintf("%d types", n), func(t *testing.T) {
			model := typesWithFields(make([]int, n)...)
			for i := range model.Types {
				model.Types[i].Fields = make([]schema.Field, 10*i)
			}

			got := Initial(model, m)
			for i, et := range model.Types {
				want := Position{X: float64(i) * step, Y: 0}
				if got[et.ID] != want {
					t.Errorf("position(%s) = %v, want %v", et.ID, got[et.ID], want)
				}
			}
		})
	}
}

func TestInitialGreedyShortestColumn(t *testing.T) {
	m := Metrics{CardWidth: 100, XMargin: 20, HeaderHeight: 10, FieldHeight: 5, CardMargin: 5}
	// Heights: t0=65 t1=15 t2=15 t3=15 t4=15
	model := typesWithFields(10, 0, 0, 0, 0)

	got := Initial(model, m)
	want := PositionMap{
		"t0": {X: 0, Y: 0},    // col0 = 65
		"t1": {X: 120, Y: 0},  // col1 = 15
		"t2": {X: 120, Y: 15}, // col1 = 30
		"t3": {X: 120, Y: 30}, // col1 = 45
		"t4": {X: 120, Y: 45}, // col1 = 60
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Initial() = %v, want %v", got, want)
	}
}

func TestInitialTiesPreferLowestColumn(t *testing.T) {
	m := Metrics{CardWidth: 100, XMargin: 0, HeaderHeight: 10}
	// Nine equal cards over three columns fill row by row.
	model := typesWithFields(0, 0, 0, 0, 0, 0, 0, 0, 0)

	got := Initial(model, m)
	for i, et := range model.Types {
		want := Position{X: float64(i%3) * 100, Y: float64(i/3) * 10}
		if got[et.ID] != want {
			t.Errorf("position(%s) = %v, want %v", et.ID, got[et.ID], want)
		}
	}
}

func TestInitialIsOrderDependent(t *testing.T) {
	m := Metrics{CardWidth: 100, XMargin: 0, HeaderHeight: 0, FieldHeight: 1}
	// Not sorted by size: a tall card placed last lands on the shortest
	// column even though a size-sorted packing would balance better.
	model := typesWithFields(1, 1, 1, 1, 9)

	got := Initial(model, m)
	if got["t4"] != (Position{X: 0, Y: 2}) {
		t.Errorf("position(t4) = %v, want {0 2}", got["t4"])
	}
}

func TestInitialKeysMatchModel(t *testing.T) {
	for n := 0; n < 40; n++ {
		model := typesWithFields(make([]int, n)...)
		got := Initial(model, DefaultMetrics())
		if !got.Covers(model) {
			t.Fatalf("n=%d: keys of Initial() do not match model ids", n)
		}
	}
}

func TestInitialDeterministic(t *testing.T) {
	model := typesWithFields(3, 7, 1, 0, 12, 5, 5, 2, 9, 4, 6)
	first := Initial(model, DefaultMetrics())
	for i := 0; i < 5; i++ {
		again := Initial(model, DefaultMetrics())
		for id, p := range first {
			q := again[id]
			if math.Float64bits(p.X) != math.Float64bits(q.X) || math.Float64bits(p.Y) != math.Float64bits(q.Y) {
				t.Fatalf("run %d: position(%s) = %v, want %v", i, id, q, p)
			}
		}
	}
}

func TestColumns(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 0}, {1, 1}, {3, 3}, {4, 2}, {8, 2}, {9, 3}, {15, 3}, {16, 4}, {100, 10},
	}
	for _, tt := range tests {
		if got := Columns(tt.n); got != tt.want {
			t.Errorf("Columns(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestCardHeight(t *testing.T) {
	m := DefaultMetrics()
	et := schema.EntityType{ID: "post", Fields: make([]schema.Field, 3)}
	want := m.HeaderHeight + 3*m.FieldHeight + m.CardMargin
	if got := m.CardHeight(et); got != want {
		t.Errorf("CardHeight() = %v, want %v", got, want)
	}
}
