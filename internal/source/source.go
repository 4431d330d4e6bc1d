// Package source loads storefront query responses and locates the metafield
// container inside them.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a response document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrContainerNotFound indicates no metafield container matched.
var ErrContainerNotFound = errors.New("metafield container not found")

// Document is a loaded response, held as JSON.
type Document struct {
	// Name is the file path, or "-" for stdin.
	Name   string
	Format Format
	json   []byte
}

// Load reads a document from path. "-" reads stdin.
func Load(path string) (*Document, error) {
	if path == "-" {
		doc, err := Read(os.Stdin, FormatAuto)
		if err != nil {
			return nil, err
		}
		doc.Name = "-"
		return doc, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Name = path
	return doc, nil
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Read decodes a document. FormatAuto sniffs JSON by its first non-space byte
// and otherwise treats the input as YAML.
func Read(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	if format == FormatAuto {
		format = sniff(data)
	}

	switch format {
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("document is not valid JSON")
		}
		return &Document{Format: FormatJSON, json: data}, nil
	case FormatYAML:
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		return &Document{Format: FormatYAML, json: converted}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && gjson.ValidBytes(trimmed) {
		return FormatJSON
	}
	return FormatYAML
}

func yamlToJSON(data []byte) ([]byte, error) {
	var decoded any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	converted, err := json.Marshal(jsonCompatible(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	return converted, nil
}

// jsonCompatible rewrites YAML-only shapes (non-string map keys) so the value
// can be encoded as JSON.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = jsonCompatible(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonCompatible(item)
		}
		return out
	default:
		return v
	}
}

// JSON returns the document encoded as JSON.
func (d *Document) JSON() []byte {
	return d.json
}

// Container selects the metafield container. A non-empty path is a gjson path
// into the document; an empty path auto-detects the container. A path that
// selects a single field object is returned as a one-element list.
func (d *Document) Container(path string) (any, error) {
	resolved, err := d.Resolve(path)
	if err != nil {
		return nil, err
	}

	var v any
	if resolved == "" {
		v = gjson.ParseBytes(d.json).Value()
	} else {
		v = gjson.GetBytes(d.json, resolved).Value()
	}

	if m, ok := v.(map[string]any); ok && isFieldObject(m) {
		return []any{m}, nil
	}
	return v, nil
}

func isFieldObject(m map[string]any) bool {
	if _, ok := m["edges"]; ok {
		return false
	}
	if _, ok := m["nodes"]; ok {
		return false
	}
	_, hasKey := m["key"]
	_, hasType := m["type"]
	return hasKey || hasType
}

// Resolve returns the path Container would read. An empty string means the
// document root is itself the container.
//
// Auto-detection accepts a root array or connection, then the first
// data.<field>.metafields, then the first data.<field>.metafield, then a
// top-level metafields. Detected keys are escaped, so the result is a valid
// --path value.
func (d *Document) Resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		if !present(gjson.GetBytes(d.json, path)) {
			return "", fmt.Errorf("%w at path %q", ErrContainerNotFound, path)
		}
		return path, nil
	}

	root := gjson.ParseBytes(d.json)
	if root.IsArray() || root.Get("edges").Exists() || root.Get("nodes").Exists() {
		return "", nil
	}

	data := root.Get("data")
	for _, field := range []string{"metafields", "metafield"} {
		var found string
		data.ForEach(func(key, value gjson.Result) bool {
			if present(value.Get(field)) {
				found = "data." + gjson.Escape(key.String()) + "." + field
				return false
			}
			return true
		})
		if found != "" {
			return found, nil
		}
	}

	if present(root.Get("metafields")) {
		return "metafields", nil
	}
	return "", ErrContainerNotFound
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
