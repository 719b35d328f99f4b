package docs

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a documentation set file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrInvalidDocSet is returned when the input does not match the documentation set schema.
var ErrInvalidDocSet = errors.New("invalid documentation set")

//go:embed docset.schema.json
var docSetSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(docSetSchema)

// FormatForPath derives the format from a file extension. Unknown extensions are read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates a documentation set from disk.
func Load(path string) (*DocSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read documentation set: %w", err)
	}
	set, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse validates data against the documentation set schema and decodes it.
func Parse(data []byte, format Format) (*DocSet, error) {
	var documentLoader gojsonschema.JSONLoader
	switch format {
	case FormatYAML:
		var generic map[string]interface{}
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		documentLoader = gojsonschema.NewGoLoader(generic)
	default:
		documentLoader = gojsonschema.NewBytesLoader(data)
	}

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocSet, strings.Join(problems, "; "))
	}

	var set DocSet
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	}
	return &set, nil
}

// Fingerprint returns a stable hash of the documentation set content.
func Fingerprint(set *DocSet) (uint64, error) {
	if set == nil {
		return 0, nil
	}
	encoded, err := json.Marshal(set)
	if err != nil {
		return 0, fmt.Errorf("failed to encode documentation set: %w", err)
	}
	return xxhash.Sum64(encoded), nil
}
