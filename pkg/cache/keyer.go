package cache

// PositionsKeyOpts are the inputs besides the model that change a position map.
type PositionsKeyOpts struct {
	CardWidth    float64 `json:"card_width"`
	XMargin      float64 `json:"x_margin"`
	HeaderHeight float64 `json:"header_height"`
	FieldHeight  float64 `json:"field_height"`
	CardMargin   float64 `json:"card_margin"`
	WithAsset    bool    `json:"with_asset"`
}

// RenderKeyOpts are the inputs besides the positions that change an artifact.
// Card sizes are part of the key since renderers draw cards from the metrics,
// not from the positions.
type RenderKeyOpts struct {
	Format       string  `json:"format"`
	Strategy     string  `json:"strategy"`
	Highlight    string  `json:"highlight,omitempty"`
	Scale        float64 `json:"scale,omitempty"`
	CardWidth    float64 `json:"card_width"`
	XMargin      float64 `json:"x_margin"`
	HeaderHeight float64 `json:"header_height"`
	FieldHeight  float64 `json:"field_height"`
	CardMargin   float64 `json:"card_margin"`
}

// Keyer builds cache keys.
type Keyer interface {
	// PositionsKey identifies the initial position map of a model.
	PositionsKey(modelHash string, opts PositionsKeyOpts) string

	// RenderKey identifies a rendered artifact. positionsHash covers the
	// positions actually drawn, which may have been dragged.
	RenderKey(modelHash, positionsHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PositionsKey returns "positions:<sha256>".
func (DefaultKeyer) PositionsKey(modelHash string, opts PositionsKeyOpts) string {
	return hashKey(KeyTypePositions, modelHash, opts)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(modelHash, positionsHash string, opts RenderKeyOpts) string {
	return hashKey(KeyTypeRender, modelHash, positionsHash, opts)
}

var _ Keyer = DefaultKeyer{}
