package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/typegraph/pkg/cache"
	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/diagram"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/observability"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func exampleModel() schema.Model {
	return schema.New(
		schema.EntityType{ID: "A", Fields: []schema.Field{
			{ID: "title", Kind: schema.KindScalar},
			{ID: "link", Kind: schema.KindReference},
		}},
		schema.EntityType{ID: "B"},
		schema.EntityType{ID: "C"},
	)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"mermaid", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStrategy(t *testing.T) {
	tests := []struct {
		strategy string
		wantErr  bool
	}{
		{"", false},
		{"detailed", false},
		{"light", false},
		{"fancy", true},
	}

	for _, tt := range tests {
		err := ValidateStrategy(tt.strategy)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStrategy(%q) error = %v, wantErr %v", tt.strategy, err, tt.wantErr)
		}
	}
}

func TestValidateMetrics(t *testing.T) {
	if err := ValidateMetrics(layout.DefaultMetrics()); err != nil {
		t.Errorf("default metrics should pass: %v", err)
	}
	bad := layout.DefaultMetrics()
	bad.CardWidth = 0
	if err := ValidateMetrics(bad); err == nil {
		t.Error("zero card width should fail")
	}
	bad = layout.DefaultMetrics()
	bad.XMargin = -1
	if err := ValidateMetrics(bad); err == nil {
		t.Error("negative margin should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateForRender(); err != nil {
		t.Fatalf("ValidateForRender: %v", err)
	}
	if o.Metrics != layout.DefaultMetrics() {
		t.Errorf("Metrics = %+v, want defaults", o.Metrics)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", o.Formats)
	}
	if o.Scale != DefaultPNGScale || o.Logger == nil {
		t.Errorf("Scale = %v Logger = %v, want defaults", o.Scale, o.Logger)
	}
}

func TestRenderKeyOptsScaleOnlyForPNG(t *testing.T) {
	o := Options{Scale: 3}
	if o.RenderKeyOpts(FormatSVG).Scale != 0 {
		t.Error("svg key should ignore scale")
	}
	if o.RenderKeyOpts(FormatPNG).Scale != 3 {
		t.Error("png key should include scale")
	}
}

func TestComputePositions(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)

	positions, hit, err := r.ComputePositionsWithCacheInfo(ctx, exampleModel(), Options{})
	if err != nil {
		t.Fatalf("ComputePositions: %v", err)
	}
	if hit {
		t.Error("first run should miss the cache")
	}
	step := layout.DefaultMetrics().ColumnStep()
	want := layout.PositionMap{"A": {X: 0}, "B": {X: step}, "C": {X: 2 * step}}
	for id, p := range want {
		if positions[id] != p {
			t.Errorf("positions[%s] = %+v, want %+v", id, positions[id], p)
		}
	}

	again, hit, err := r.ComputePositionsWithCacheInfo(ctx, exampleModel(), Options{})
	if err != nil || !hit {
		t.Errorf("second run hit = %v, err = %v, want cache hit", hit, err)
	}
	if len(again) != 3 {
		t.Errorf("cached positions = %v", again)
	}

	_, hit, _ = r.ComputePositionsWithCacheInfo(ctx, exampleModel(), Options{Refresh: true})
	if hit {
		t.Error("refresh should bypass the cache")
	}
}

func TestComputePositionsSaved(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	saved := layout.PositionMap{"A": {X: 9, Y: 9}, "B": {X: 1}, "C": {Y: 1}}

	got, err := r.ComputePositions(ctx, exampleModel(), Options{Saved: saved})
	if err != nil {
		t.Fatal(err)
	}
	if got["A"] != saved["A"] {
		t.Errorf("saved positions ignored: %v", got)
	}

	// A saved map from an older model is discarded.
	stale := layout.PositionMap{"A": {X: 9, Y: 9}, "Gone": {}}
	got, _ = r.ComputePositions(ctx, exampleModel(), Options{Saved: stale})
	if got["A"] != (layout.Position{}) || len(got) != 3 {
		t.Errorf("stale saved map should be recomputed: %v", got)
	}
}

func TestComputePositionsWithAsset(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	got, err := r.ComputePositions(context.Background(), exampleModel(), Options{WithAsset: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got[schema.AssetTypeID]; !ok || len(got) != 4 {
		t.Errorf("positions = %v, want Asset included", got)
	}
}

func TestComputePositionsInvalidModel(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	m := schema.New(schema.EntityType{ID: "A"}, schema.EntityType{ID: "A"})
	if _, err := r.ComputePositions(context.Background(), m, Options{}); err == nil {
		t.Error("duplicate type ids should fail")
	}
}

func TestAnalyze(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	a, err := r.Analyze(context.Background(), exampleModel(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Count != 3 || a.Strategy != connect.Detailed {
		t.Errorf("Analyze = %d %v, want 3 detailed", a.Count, a.Strategy)
	}

	a, _ = r.Analyze(context.Background(), exampleModel(), Options{Strategy: "light"})
	if a.Strategy != connect.Light {
		t.Errorf("forced strategy = %v, want light", a.Strategy)
	}

	if _, err := r.Analyze(context.Background(), exampleModel(), Options{Strategy: "bogus"}); err == nil {
		t.Error("bogus strategy should fail")
	}
}

func TestRenderCacheKeyIncludesMetrics(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, nil)
	m := exampleModel()
	positions := layout.Initial(m, layout.DefaultMetrics())

	first, _, err := r.RenderWithCacheInfo(ctx, m, positions, Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	tall := layout.DefaultMetrics()
	tall.FieldHeight = 90
	second, hit, err := r.RenderWithCacheInfo(ctx, m, positions, Options{Formats: []string{FormatDOT}, Metrics: tall})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if hit {
		t.Error("render with other card metrics should miss")
	}
	if string(first[FormatDOT]) == string(second[FormatDOT]) {
		t.Error("taller fields should change the card heights")
	}
}

func TestRenderTextFormats(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	m := exampleModel()
	positions := layout.Initial(m, layout.DefaultMetrics())
	opts := Options{Formats: []string{FormatDOT, FormatMermaid, FormatJSON}, Highlight: "B"}

	out, hit, err := r.RenderWithCacheInfo(ctx, m, positions, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if hit {
		t.Error("first render should miss")
	}
	if !strings.Contains(string(out[FormatDOT]), `"A":"f_link" -> "B"`) {
		t.Errorf("dot output:\n%s", out[FormatDOT])
	}
	if !strings.HasPrefix(string(out[FormatMermaid]), "erDiagram") {
		t.Errorf("mermaid output:\n%s", out[FormatMermaid])
	}
	var snap diagram.Snapshot
	if err := json.Unmarshal(out[FormatJSON], &snap); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if snap.EdgeCount != 3 || len(snap.Connections) != 3 {
		t.Errorf("snapshot = %d edges %d connections, want 3 and 3", snap.EdgeCount, len(snap.Connections))
	}

	_, hit, err = r.RenderWithCacheInfo(ctx, m, positions, opts)
	if err != nil || !hit {
		t.Errorf("second render hit = %v, err = %v, want hit", hit, err)
	}

	// Dragged positions are a different render.
	moved := positions.Clone()
	moved["B"] = moved["B"].Add(10, 10)
	_, hit, _ = r.RenderWithCacheInfo(ctx, m, moved, opts)
	if hit {
		t.Error("render with moved positions should miss")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	res, err := r.Execute(context.Background(), exampleModel(), Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ModelHash == "" || len(res.Positions) != 3 {
		t.Errorf("result hash=%q positions=%v", res.ModelHash, res.Positions)
	}
	if res.Stats.TypeCount != 3 || res.Stats.EdgeCount != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Artifacts[FormatJSON]) == 0 {
		t.Error("missing json artifact")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), exampleModel(), Options{Formats: []string{"gif"}}); err == nil {
		t.Error("invalid format should fail")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	layouts, draws int
	formats        []string
}

func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) { h.layouts++ }
func (h *recordingHooks) OnDrawComplete(context.Context, string, int, time.Duration)  { h.draws++ }
func (h *recordingHooks) OnRenderComplete(_ context.Context, f string, _ int, _ time.Duration, _ error) {
	h.formats = append(h.formats, f)
}

func TestExecuteEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), exampleModel(), Options{Formats: []string{FormatDOT}}); err != nil {
		t.Fatal(err)
	}
	if h.layouts != 1 || h.draws != 1 {
		t.Errorf("layouts = %d draws = %d, want 1 and 1", h.layouts, h.draws)
	}
	if len(h.formats) != 1 || h.formats[0] != FormatDOT {
		t.Errorf("formats = %v, want [dot]", h.formats)
	}
}
