package pipeline

import (
	"fmt"

	"github.com/matzehuels/typegraph/pkg/cache"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// PrepareModel validates model and injects the Asset type when requested.
func PrepareModel(model schema.Model, opts Options) (schema.Model, error) {
	if err := model.Validate(); err != nil {
		return schema.Model{}, err
	}
	if opts.WithAsset {
		model = model.WithAsset()
	}
	return model, nil
}

// HashModel returns the content hash used in cache keys. Type order is part
// of the hash because it determines the layout.
func HashModel(model schema.Model) (string, error) {
	h, err := cache.HashJSON(model)
	if err != nil {
		return "", fmt.Errorf("hash model: %w", err)
	}
	return h, nil
}
