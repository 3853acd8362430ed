package refs_test

import (
	"fmt"

	"github.com/matzehuels/typegraph/pkg/refs"
	"github.com/matzehuels/typegraph/pkg/schema"
)

func ExampleResolve() {
	m := schema.New(
		schema.EntityType{ID: "A", Fields: []schema.Field{
			{ID: "title", Kind: schema.KindScalar},
			{ID: "link", Kind: schema.KindReference},
		}},
		schema.EntityType{ID: "B"},
		schema.EntityType{ID: "C"},
	)

	for _, e := range refs.Resolve(m) {
		fmt.Printf("%s.%s -> %s\n", e.SourceTypeID, e.SourceFieldID, e.TargetTypeID)
	}
	fmt.Println("count:", refs.Count(m))
	// Output:
	// A.link -> A
	// A.link -> B
	// A.link -> C
	// count: 3
}
