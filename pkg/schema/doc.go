// Package schema defines the content model handed to the diagram engine.
//
// A [Model] is an ordered list of [EntityType] values. Each entity type owns
// an ordered list of [Field] values; reference fields may carry a
// [TargetConstraint] naming which entity types they may point at.
//
// # Ordering
//
// Model order is significant. It is the only input the layout engine uses to
// break ties, so it must be preserved from the importer all the way to the
// position map:
//
//	m := schema.Model{Types: []schema.EntityType{author, post, category}}
//	positions := layout.Initial(m, layout.DefaultMetrics())
//
// # Target Constraints
//
// A reference field resolves to entity types according to its constraint:
//
//	nil or empty       any type currently registered in the model
//	AssetOnly()        the reserved [AssetTypeID] pseudo-type
//	Types("a", "b")    the listed types that are registered in the model
//
// Resolution itself lives in the refs package so that counting and drawing
// share a single implementation.
//
// # Serialization
//
// Models are read from JSON, YAML or TOML files. The JSON form is:
//
//	{
//	  "types": [
//	    {
//	      "id": "post",
//	      "name": "Blog Post",
//	      "fields": [
//	        {"id": "title", "kind": "scalar"},
//	        {"id": "author", "kind": "reference", "target": {"types": ["author"]}},
//	        {"id": "hero", "kind": "reference", "target": {"asset_only": true}}
//	      ]
//	    }
//	  ]
//	}
//
// Use [ReadModelFile] to load a model and [Model.Validate] to check its
// structure. The engine itself never validates; it assumes a model that has
// already passed [Model.Validate].
package schema
