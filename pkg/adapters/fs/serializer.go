package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/hbnb/pkg/core"
)

// Document is the serialized form of one record, as produced by
// core.Record.ToMap.
type Document = map[string]any

// Serializer defines how the whole store is read and written in a specific
// file format. The top-level mapping is keyed by "<Kind>.<id>".
type Serializer interface {
	// Decode parses data into documents. Empty input yields an empty store.
	Decode(data []byte) (map[string]Document, error)
	// Encode converts documents to bytes.
	Encode(docs map[string]Document) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers, keyed by file
// extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
		".toml": NewTOMLSerializer(),
	}
}

// Formats lists the format names accepted by SerializerFor.
func Formats() []string {
	return []string{"json", "toml", "yaml"}
}

// SerializerFor picks a serializer by explicit format name, or by the
// extension of path when format is empty. Unknown extensions fall back to
// JSON.
func SerializerFor(format, path string) (Serializer, string, error) {
	serializers := DefaultSerializers()
	if format != "" {
		ext := "." + strings.ToLower(strings.TrimPrefix(format, "."))
		s, ok := serializers[ext]
		if !ok {
			return nil, "", fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats(), ", "))
		}
		return s, formatName(ext), nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if s, ok := serializers[ext]; ok {
		return s, formatName(ext), nil
	}
	return serializers[".json"], "json", nil
}

func formatName(ext string) string {
	if ext == ".yml" {
		return "yaml"
	}
	return strings.TrimPrefix(ext, ".")
}

// --- JSON Serializer ---

// JSONSerializer handles reading and writing JSON files. Numbers are decoded
// as json.Number so integers and floats keep their type across a round trip.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Decode(data []byte) (map[string]Document, error) {
	docs := make(map[string]Document)
	if len(bytes.TrimSpace(data)) == 0 {
		return docs, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&docs); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return docs, nil
}

func (s *JSONSerializer) Encode(docs map[string]Document) ([]byte, error) {
	payload := make(map[string]Document, len(docs))
	for key, doc := range docs {
		payload[key] = normalizeMap(doc, func(f float64) any {
			return json.Number(core.FormatFloat(f))
		})
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- YAML Serializer ---

// YAMLSerializer handles reading and writing YAML files.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Decode(data []byte) (map[string]Document, error) {
	docs := make(map[string]Document)
	if len(bytes.TrimSpace(data)) == 0 {
		return docs, nil
	}
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return docs, nil
}

func (s *YAMLSerializer) Encode(docs map[string]Document) ([]byte, error) {
	payload := make(map[string]Document, len(docs))
	for key, doc := range docs {
		// yaml.v3 writes 3.0 as 3, which reads back as an integer.
		payload[key] = normalizeMap(doc, func(f float64) any {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: core.FormatFloat(f)}
		})
	}
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- TOML Serializer ---

// TOMLSerializer handles reading and writing TOML files. Every record becomes
// a table named after its registry key.
type TOMLSerializer struct{}

// NewTOMLSerializer creates a new TOML serializer.
func NewTOMLSerializer() *TOMLSerializer {
	return &TOMLSerializer{}
}

func (s *TOMLSerializer) Decode(data []byte) (map[string]Document, error) {
	docs := make(map[string]Document)
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&docs); err != nil {
		return nil, fmt.Errorf("invalid toml: %w", err)
	}
	return docs, nil
}

func (s *TOMLSerializer) Encode(docs map[string]Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(docs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- Helpers ---

// normalizeMap copies doc, replacing every float64 (including those nested
// in lists) with the result of float.
func normalizeMap(doc Document, float func(float64) any) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v, float)
	}
	return out
}

func normalizeValue(v any, float func(float64) any) any {
	switch x := v.(type) {
	case float64:
		return float(x)
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = normalizeValue(item, float)
		}
		return items
	default:
		return v
	}
}

// sortedKeys returns the keys of docs in lexical order.
func sortedKeys(docs map[string]Document) []string {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
