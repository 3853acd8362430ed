package diagram_test

import (
	"fmt"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/diagram"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/schema"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

func Example() {
	model := schema.New(
		schema.EntityType{ID: "Post", Fields: []schema.Field{
			{ID: "author", Kind: schema.KindReference, Target: schema.Types("Author")},
			{ID: "cover", Kind: schema.KindReference, Target: schema.AssetOnly()},
		}},
		schema.EntityType{ID: "Author"},
	)

	d := diagram.New(model, connect.NewRecorder(), diagram.Options{WithAsset: true})
	fmt.Println("edges:", d.Count(), d.Strategy())
	fmt.Println("related:", d.Related("Post"))

	d.MeasureFromLayout(layout.DefaultMetrics())
	fit, _, _ := d.Fit(viewport.Size{Width: 1920, Height: 1080})
	fmt.Printf("scale: %.2f\n", fit.Scale)
	// Output:
	// edges: 2 detailed
	// related: [Author Asset]
	// scale: 1.00
}
