package refs

import (
	"slices"
	"testing"

	"github.com/matzehuels/typegraph/pkg/schema"
)

func TestResolveFieldUnconstrainedIncludesSelf(t *testing.T) {
	m := schema.New(
		schema.EntityType{ID: "a", Fields: []schema.Field{{ID: "link", Kind: schema.KindReference}}},
		schema.EntityType{ID: "b"},
		schema.EntityType{ID: "c"},
	)

	got := ResolveField(m.Types[0].Fields[0], m)
	want := []string{"a", "b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("ResolveField() = %v, want %v", got, want)
	}
}

func TestResolveFieldEmptyExplicitSetIsAny(t *testing.T) {
	m := schema.New(
		schema.EntityType{ID: "a", Fields: []schema.Field{{ID: "link", Kind: schema.KindReferences, Target: schema.Types()}}},
		schema.EntityType{ID: "b"},
	)

	got := ResolveField(m.Types[0].Fields[0], m)
	want := []string{"a", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("ResolveField() = %v, want %v", got, want)
	}
}

func TestResolveFieldAssetOnly(t *testing.T) {
	tests := []struct {
		name  string
		model schema.Model
	}{
		{"without asset type", schema.New(schema.EntityType{ID: "a"}, schema.EntityType{ID: "b"})},
		{"with asset type", schema.New(schema.EntityType{ID: "a"}).WithAsset()},
		{"single type", schema.New(schema.EntityType{ID: "a"})},
	}

	f := schema.Field{ID: "hero", Kind: schema.KindReference, Target: schema.AssetOnly()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveField(f, tt.model)
			want := []string{schema.AssetTypeID}
			if !slices.Equal(got, want) {
				t.Errorf("ResolveField() = %v, want %v", got, want)
			}
		})
	}
}

func TestResolveFieldDropsDanglingTargets(t *testing.T) {
	m := schema.New(schema.EntityType{ID: "a"}, schema.EntityType{ID: "b"})
	f := schema.Field{ID: "link", Kind: schema.KindReference, Target: schema.Types("ghost", "b", "removed")}

	got := ResolveField(f, m)
	want := []string{"b"}
	if !slices.Equal(got, want) {
		t.Errorf("ResolveField() = %v, want %v", got, want)
	}
}

func TestResolveFieldScalar(t *testing.T) {
	m := schema.New(schema.EntityType{ID: "a"})
	if got := ResolveField(schema.Field{ID: "title", Kind: schema.KindScalar}, m); len(got) != 0 {
		t.Errorf("ResolveField(scalar) = %v, want empty", got)
	}
}

func TestResolveOrderAndDuplicates(t *testing.T) {
	m := schema.New(
		schema.EntityType{ID: "post", Fields: []schema.Field{
			{ID: "title", Kind: schema.KindScalar},
			{ID: "author", Kind: schema.KindReference, Target: schema.Types("author")},
			{ID: "editor", Kind: schema.KindReference, Target: schema.Types("author")},
		}},
		schema.EntityType{ID: "author", Fields: []schema.Field{
			{ID: "avatar", Kind: schema.KindReference, Target: schema.AssetOnly()},
		}},
	)

	got := Resolve(m)
	want := []Edge{
		{SourceTypeID: "post", SourceFieldID: "author", TargetTypeID: "author"},
		{SourceTypeID: "post", SourceFieldID: "editor", TargetTypeID: "author"},
		{SourceTypeID: "author", SourceFieldID: "avatar", TargetTypeID: schema.AssetTypeID},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
	if n := Count(m); n != len(want) {
		t.Errorf("Count() = %d, want %d", n, len(want))
	}
}

func TestCountMatchesResolve(t *testing.T) {
	models := []schema.Model{
		{},
		schema.New(schema.EntityType{ID: "solo"}),
		schema.New(
			schema.EntityType{ID: "a", Fields: []schema.Field{
				{ID: "any", Kind: schema.KindReferences},
				{ID: "some", Kind: schema.KindReference, Target: schema.Types("b", "x")},
				{ID: "file", Kind: schema.KindReference, Target: schema.AssetOnly()},
			}},
			schema.EntityType{ID: "b", Fields: []schema.Field{
				{ID: "back", Kind: schema.KindReference, Target: schema.Types("a")},
			}},
		).WithAsset(),
	}

	for i, m := range models {
		if got, want := Count(m), len(Resolve(m)); got != want {
			t.Errorf("model %d: Count() = %d, len(Resolve()) = %d", i, got, want)
		}
	}
}

func TestEdgeIsSelf(t *testing.T) {
	if !(Edge{SourceTypeID: "a", TargetTypeID: "a"}).IsSelf() {
		t.Error("IsSelf() = false for a self reference")
	}
	if (Edge{SourceTypeID: "a", TargetTypeID: "b"}).IsSelf() {
		t.Error("IsSelf() = true for a→b")
	}
}
