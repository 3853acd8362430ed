package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
)

// Format identifies a model file encoding.
type Format string

// Supported model encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath derives the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	if err := typeerrors.ValidateModelFilename(path); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return FormatJSON, nil
	}
}

// ReadModel decodes a model from r in the given format and validates it.
// ReadModel does not close r.
func ReadModel(r io.Reader, format Format) (Model, error) {
	var m Model
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&m)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&m)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&m)
	default:
		return Model{}, typeerrors.New(typeerrors.ErrCodeInvalidFormat, "unsupported model format %q", format)
	}
	if err != nil && err != io.EOF {
		return Model{}, typeerrors.Wrap(typeerrors.ErrCodeInvalidFormat, err, "decode %s model", format)
	}

	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// ReadModelFile reads and validates the model stored at path. The encoding
// is chosen from the file extension.
func ReadModelFile(path string) (Model, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Model{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Model{}, typeerrors.Wrap(typeerrors.ErrCodeFileNotFound, err, "model %s", path)
		}
		return Model{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ReadModel(f, format)
	if err != nil {
		return Model{}, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

// MarshalModel serializes a model to pretty-printed JSON.
func MarshalModel(m Model) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// WriteModel writes the model to w as JSON.
func WriteModel(m Model, w io.Writer) error {
	data, err := MarshalModel(m)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(append(data, '\n')))
	return err
}
