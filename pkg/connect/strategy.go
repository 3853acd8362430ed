package connect

import "fmt"

// Threshold is the largest resolved edge count drawn in detailed mode.
const Threshold = 100

// Strategy selects how edges are drawn.
type Strategy string

const (
	// Detailed draws every resolved edge from its field handle.
	Detailed Strategy = "detailed"
	// Light draws one card-to-card connection per pair of types.
	Light Strategy = "light"
)

// ChooseStrategy returns Light iff edgeCount is strictly greater than
// Threshold. There is no hysteresis.
func ChooseStrategy(edgeCount int) Strategy {
	if edgeCount > Threshold {
		return Light
	}
	return Detailed
}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Detailed, Light:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("invalid strategy: %q (must be one of: detailed, light)", s)
}
