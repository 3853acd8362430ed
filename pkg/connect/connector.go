package connect

import "fmt"

// Handle is an anchor point a connection can attach to: either a whole type
// card (FieldID empty) or a single field row on a card.
type Handle struct {
	TypeID  string `json:"type"`
	FieldID string `json:"field,omitempty"`
}

// CardHandle returns the handle of a type's card.
func CardHandle(typeID string) Handle { return Handle{TypeID: typeID} }

// FieldHandle returns the handle of a field row on a type's card.
func FieldHandle(typeID, fieldID string) Handle { return Handle{TypeID: typeID, FieldID: fieldID} }

// IsCard reports whether the handle anchors at a whole card.
func (h Handle) IsCard() bool { return h.FieldID == "" }

// String returns "type" for card handles and "type.field" for field handles.
func (h Handle) String() string {
	if h.IsCard() {
		return h.TypeID
	}
	return fmt.Sprintf("%s.%s", h.TypeID, h.FieldID)
}

// Style tells the connector how a connection should look.
type Style struct {
	Strategy Strategy `json:"strategy"`
	SelfLoop bool     `json:"self_loop,omitempty"`
	// Multiplicity is the number of resolved edges a light-mode connection
	// stands for. It is always 1 in detailed mode.
	Multiplicity int `json:"multiplicity"`
}

// Connection identifies a drawn connection inside its connector.
type Connection string

// Connector is the line-drawing capability of the rendering surface.
//
// Implementations draw a line between two handles and keep it attached when
// the cards move. They are called from the diagram's single goroutine.
type Connector interface {
	// Connect draws a line from src to dst and returns its identifier.
	Connect(src, dst Handle, style Style) Connection
	// Revalidate recomputes the path of c after one of its cards moved.
	Revalidate(c Connection)
	// Destroy removes c from the surface.
	Destroy(c Connection)
}
