package metafield

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateKey is returned by ByKey under DuplicateReject.
var ErrDuplicateKey = errors.New("duplicate metafield key")

// DuplicatePolicy decides what ByKey does when two fields share a key.
type DuplicatePolicy string

const (
	// DuplicateLast keeps the last field seen for a key.
	DuplicateLast DuplicatePolicy = "last"
	// DuplicateFirst keeps the first field seen for a key.
	DuplicateFirst DuplicatePolicy = "first"
	// DuplicateReject fails with ErrDuplicateKey.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy parses a policy name. An empty name is DuplicateLast.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateLast, nil
	case DuplicateLast, DuplicateFirst, DuplicateReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate key policy %q (expected last, first or reject)", s)
	}
}

// Collection is the result of normalizing a field container.
type Collection struct {
	Fields []NormalizedField
	// Dropped counts container elements that were not object-like.
	Dropped int
}

// Collect normalizes every element of a container. The container may be a
// connection ({edges: [{node: ...}]} or {nodes: [...]}), a []any, a []RawField
// or a []map[string]any. Elements that are not object-like are dropped and
// counted; an unrecognized container yields an empty collection.
func Collect(container any) Collection {
	items := containerItems(container)
	c := Collection{Fields: make([]NormalizedField, 0, len(items))}
	for _, item := range items {
		nf, ok := Normalize(item)
		if !ok {
			c.Dropped++
			continue
		}
		c.Fields = append(c.Fields, nf)
	}
	return c
}

// NormalizeAll normalizes a container, silently dropping invalid elements.
func NormalizeAll(container any) []NormalizedField {
	return Collect(container).Fields
}

func containerItems(container any) []any {
	switch c := container.(type) {
	case map[string]any:
		return connectionNodes(c)
	case []any:
		return c
	case []RawField:
		items := make([]any, len(c))
		for i, rf := range c {
			items[i] = rf
		}
		return items
	case []*RawField:
		items := make([]any, len(c))
		for i, rf := range c {
			items[i] = rf
		}
		return items
	case []map[string]any:
		items := make([]any, len(c))
		for i, m := range c {
			if m == nil {
				items[i] = nil
				continue
			}
			items[i] = m
		}
		return items
	default:
		return nil
	}
}

// ByKey folds fields into a map keyed by Key, resolving collisions with policy.
func ByKey(fields []NormalizedField, policy DuplicatePolicy) (map[string]NormalizedField, error) {
	out := make(map[string]NormalizedField, len(fields))
	for _, f := range fields {
		if _, exists := out[f.Key]; exists {
			switch policy {
			case DuplicateFirst:
				continue
			case DuplicateReject:
				return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, f.Key)
			}
		}
		out[f.Key] = f
	}
	return out, nil
}

// Index is ByKey with DuplicateLast.
func Index(fields []NormalizedField) map[string]NormalizedField {
	out, _ := ByKey(fields, DuplicateLast)
	return out
}
