package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aidanlsb/metafold/internal/metafield"
	"github.com/aidanlsb/metafold/internal/source"
)

// loadedFields is a normalized document plus what the CLI reports about it.
type loadedFields struct {
	Source   string
	Path     string
	Fields   []metafield.NormalizedField
	Warnings []Warning
}

// loadFields reads a response document and normalizes its metafield
// container. An empty containerPath falls back to normalize.path from config,
// then auto-detection.
func loadFields(arg, containerPath string) (*loadedFields, error) {
	if strings.TrimSpace(containerPath) == "" {
		containerPath = getConfig().Normalize.Path
	}

	doc, err := source.Load(arg)
	if err != nil {
		return nil, err
	}

	resolved, err := doc.Resolve(containerPath)
	if err != nil {
		return nil, err
	}
	container, err := doc.Container(resolved)
	if err != nil {
		return nil, err
	}

	collection := metafield.Collect(container)
	logger.Debugw("normalized document",
		"source", doc.Name,
		"format", doc.Format,
		"path", resolved,
		"fields", len(collection.Fields),
		"dropped", collection.Dropped,
	)

	out := &loadedFields{
		Source: doc.Name,
		Path:   resolved,
		Fields: collection.Fields,
	}
	if collection.Dropped > 0 {
		out.Warnings = append(out.Warnings, Warning{
			Code:    WarnDroppedElements,
			Message: fmt.Sprintf("%d container element(s) were not metafield objects and were skipped", collection.Dropped),
		})
	}
	for _, f := range collection.Fields {
		if f.RawType != "" && !f.Kind.Known() {
			out.Warnings = append(out.Warnings, Warning{
				Code:    WarnUnknownKind,
				Message: fmt.Sprintf("type %q has no dedicated handling; shown as text", f.RawType),
				Key:     f.QualifiedKey(),
			})
		}
	}
	return out, nil
}

// duplicateWarnings reports keys that occur more than once.
func duplicateWarnings(fields []metafield.NormalizedField) []Warning {
	seen := make(map[string]int, len(fields))
	var order []string
	for _, f := range fields {
		if seen[f.Key] == 0 {
			order = append(order, f.Key)
		}
		seen[f.Key]++
	}

	var warnings []Warning
	for _, key := range order {
		if n := seen[key]; n > 1 {
			warnings = append(warnings, Warning{
				Code:    WarnDuplicateKey,
				Message: fmt.Sprintf("key %q occurs %d times", key, n),
				Key:     key,
			})
		}
	}
	return warnings
}

// loadError reports a loadFields failure with the right code.
func loadError(err error) error {
	code := errorCode(err, ErrDocumentInvalid)
	suggestion := ""
	if errors.Is(err, source.ErrContainerNotFound) {
		suggestion = "Pass --path with the gjson path of the metafields list"
	}
	return handleError(code, err, suggestion)
}
