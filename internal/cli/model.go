package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/layout"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// loadModel reads a JSON, YAML or TOML content model.
func loadModel(path string) (schema.Model, error) {
	if err := typeerrors.ValidateModelFilename(path); err != nil {
		return schema.Model{}, err
	}
	m, err := schema.ReadModelFile(path)
	if err != nil {
		return schema.Model{}, fmt.Errorf("load model %s: %w", path, err)
	}
	return m, nil
}

// loadPositions reads a saved position map. An empty path yields nil.
func loadPositions(path string) (layout.PositionMap, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read positions %s: %w", path, err)
	}
	var pm layout.PositionMap
	if err := json.Unmarshal(data, &pm); err != nil {
		return nil, typeerrors.Wrap(typeerrors.ErrCodeInvalidInput, err, "decode positions %s", path)
	}
	return pm, nil
}

// defaultPositionsPath is <model>.positions.json next to the model.
func defaultPositionsPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".positions.json"
}

// writePositions writes pm as indented JSON. "-" writes to stdout.
func writePositions(path string, pm layout.PositionMap) error {
	data, err := json.MarshalIndent(pm, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(path, append(data, '\n'))
}

// writeOutput writes data to path, creating parent directories. "-" writes
// to stdout.
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
