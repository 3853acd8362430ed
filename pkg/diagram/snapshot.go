package diagram

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/layout"
)

// Snapshot is the serializable state of a Diagram.
type Snapshot struct {
	Types       []string            `json:"types"`
	Positions   layout.PositionMap  `json:"positions"`
	EdgeCount   int                 `json:"edge_count"`
	Strategy    connect.Strategy    `json:"strategy"`
	Connections []connect.Drawn     `json:"connections"`
	Relations   map[string][]string `json:"relations"`
}

// Snapshot captures the current state of the diagram.
func (d *Diagram) Snapshot() Snapshot {
	return Snapshot{
		Types:       d.model.IDs(),
		Positions:   d.store.Snapshot(),
		EdgeCount:   d.count,
		Strategy:    d.drawing.Strategy(),
		Connections: d.drawing.Connections(),
		Relations:   d.drawing.Relations(),
	}
}

// WriteJSON writes the snapshot as indented JSON.
func (s Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
