// Package mermaid renders a drawn diagram as a Mermaid erDiagram, for
// embedding in Markdown documentation.
package mermaid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/schema"
)

var identRe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

func ident(s string) string {
	return identRe.ReplaceAllString(s, "_")
}

// Render returns the erDiagram source for model and its drawn connections.
// Detailed connections are labelled with their field; light connections with
// the number of references they stand for.
func Render(model schema.Model, conns []connect.Drawn) string {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	for _, t := range model.Types {
		fmt.Fprintf(&sb, "    %s {\n", ident(t.ID))
		for _, f := range t.Fields {
			fmt.Fprintf(&sb, "        %s %s\n", f.Kind, ident(f.ID))
		}
		sb.WriteString("    }\n")
	}

	registered := model.Registered()
	first := true
	for _, c := range conns {
		if !registered[c.Source.TypeID] || !registered[c.Target.TypeID] {
			continue
		}
		if first {
			sb.WriteString("\n")
			first = false
		}
		fmt.Fprintf(&sb, "    %s %s %s : %q\n",
			ident(c.Source.TypeID), cardinality(model, c), ident(c.Target.TypeID), label(c))
	}
	return sb.String()
}

// cardinality picks the relationship arrow. A multi-reference field, or a
// light connection grouping several references, is many-to-many.
func cardinality(model schema.Model, c connect.Drawn) string {
	if c.Style.Multiplicity > 1 {
		return "}o--o{"
	}
	if len(c.Edges) == 1 {
		if t, ok := model.Lookup(c.Edges[0].SourceTypeID); ok {
			if f, ok := t.Field(c.Edges[0].SourceFieldID); ok && f.Kind == schema.KindReferences {
				return "}o--o{"
			}
		}
	}
	return "}o--||"
}

func label(c connect.Drawn) string {
	if !c.Source.IsCard() {
		return c.Source.FieldID
	}
	if c.Style.Multiplicity > 1 {
		return fmt.Sprintf("%d refs", c.Style.Multiplicity)
	}
	if len(c.Edges) == 1 {
		return c.Edges[0].SourceFieldID
	}
	return ""
}
