// Package pkg provides the core libraries for Typegraph content-model diagrams.
//
// # Overview
//
// Typegraph draws a content model (entity types and the reference fields
// between them) as a diagram of cards joined by connections. The pkg
// directory is organized into three areas:
//
//  1. Model - [schema] types, readers and validation; [refs] reference
//     resolution
//  2. Engine - [layout] positions, [connect] edge drawing, [viewport]
//     camera fitting, and [diagram] which ties them into one session
//  3. Infrastructure - [pipeline], [cache], [render], [errors],
//     [observability] and [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	Model file (JSON, YAML, TOML)
//	         ↓
//	    [schema] package (parse + validate)
//	         ↓
//	    [refs] package (resolve reference fields into edges)
//	         ↓
//	    [layout] package (initial card positions)
//	         ↓
//	    [connect] package (detailed or light drawing strategy)
//	         ↓
//	    [render] package (DOT, SVG, PDF, PNG, Mermaid)
//
// # Quick Start
//
// Render a model to SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/typegraph/pkg/pipeline"
//	    "github.com/matzehuels/typegraph/pkg/schema"
//	)
//
//	model, _ := schema.ReadModelFile("blog.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), model, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// ## Model
//
// [schema] - Content model types. A model is an ordered list of entity types;
// each type owns scalar and reference fields. Reference fields carry an
// optional target constraint (explicit type ids or asset-only).
//
// [refs] - Resolves reference fields against a model. Unconstrained fields
// point at every type, asset-only fields at the Asset type, and explicit
// targets missing from the model are dropped.
//
// ## Engine
//
// [layout] - Initial positions: up to three types in one row, larger models
// packed into floor(sqrt(n)) columns. [layout.Store] holds the mutable
// positions that dragging updates.
//
// [connect] - Chooses the drawing strategy from the resolved edge count and
// draws connections through an opaque [connect.Connector].
//
// [viewport] - Fits measured card boxes into a viewport and applies the
// transform to a camera inside a silent window.
//
// [diagram] - One hosting-view session: positions, drawn connections, card
// measurement, dragging and centring.
//
// ## Infrastructure
//
// [pipeline] - The complete flow (model → positions → render) shared by the
// CLI and the HTTP API, with caching of positions and artifacts.
//
// [cache] - Content-addressed cache with file, Redis, MongoDB and null
// backends.
//
// [render] - Output formats. [render/dot] pins every card in Graphviz DOT
// and renders SVG in-process; [render/mermaid] writes erDiagram source.
// PDF and PNG go through rsvg-convert.
//
// [errors] - Structured errors with codes that map to HTTP statuses.
//
// [observability] - Hooks for pipeline stages and HTTP requests.
//
// [buildinfo] - Version, commit and build date set at link time.
//
// [schema]: github.com/matzehuels/typegraph/pkg/schema
// [refs]: github.com/matzehuels/typegraph/pkg/refs
// [layout]: github.com/matzehuels/typegraph/pkg/layout
// [layout.Store]: github.com/matzehuels/typegraph/pkg/layout#Store
// [connect]: github.com/matzehuels/typegraph/pkg/connect
// [connect.Connector]: github.com/matzehuels/typegraph/pkg/connect#Connector
// [viewport]: github.com/matzehuels/typegraph/pkg/viewport
// [diagram]: github.com/matzehuels/typegraph/pkg/diagram
// [pipeline]: github.com/matzehuels/typegraph/pkg/pipeline
// [cache]: github.com/matzehuels/typegraph/pkg/cache
// [render]: github.com/matzehuels/typegraph/pkg/render
// [render/dot]: github.com/matzehuels/typegraph/pkg/render/dot
// [render/mermaid]: github.com/matzehuels/typegraph/pkg/render/mermaid
// [errors]: github.com/matzehuels/typegraph/pkg/errors
// [observability]: github.com/matzehuels/typegraph/pkg/observability
// [buildinfo]: github.com/matzehuels/typegraph/pkg/buildinfo
package pkg
