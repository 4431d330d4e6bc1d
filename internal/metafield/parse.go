package metafield

import (
	"encoding/json"
	"math"
	"strconv"
)

// ParseRawField validates a loosely-shaped value at the data-source boundary.
//
// It accepts decoded JSON/YAML objects (map[string]any) as well as RawField
// and *RawField. Every attribute is optional and a wrongly-typed attribute is
// treated as absent. The boolean is false when v is not object-like.
func ParseRawField(v any) (RawField, bool) {
	switch t := v.(type) {
	case RawField:
		return cloneRawField(t), true
	case *RawField:
		if t == nil {
			return RawField{}, false
		}
		return cloneRawField(*t), true
	case map[string]any:
		return parseRawFieldMap(t), true
	default:
		return RawField{}, false
	}
}

func parseRawFieldMap(m map[string]any) RawField {
	rf := RawField{
		Key:       stringAttr(m, "key"),
		Namespace: stringAttr(m, "namespace"),
		Type:      stringAttr(m, "type"),
		Value:     optionalStringAttr(m, "value"),
	}

	if ref, ok := ParseReference(m["reference"]); ok {
		rf.Reference = &ref
	}

	// references is a connection: {nodes: [...]} (edges are accepted too).
	if conn, ok := m["references"].(map[string]any); ok {
		for _, node := range connectionNodes(conn) {
			if ref, ok := ParseReference(node); ok {
				rf.References = append(rf.References, ref)
			}
		}
	}

	return rf
}

// ParseReference validates one resolved reference object.
func ParseReference(v any) (Reference, bool) {
	switch t := v.(type) {
	case Reference:
		return cloneReference(t), true
	case *Reference:
		if t == nil {
			return Reference{}, false
		}
		return cloneReference(*t), true
	case map[string]any:
		return parseReferenceMap(t), true
	default:
		return Reference{}, false
	}
}

func parseReferenceMap(m map[string]any) Reference {
	ref := Reference{
		Typename: stringAttr(m, "__typename"),
		ID:       stringAttr(m, "id"),
		Handle:   stringAttr(m, "handle"),
		Raw:      cloneMap(m),
	}

	if fields, ok := m["fields"].([]any); ok {
		for _, item := range fields {
			fm, ok := item.(map[string]any)
			if !ok {
				continue
			}
			ref.Fields = append(ref.Fields, MetaobjectField{
				Key:   stringAttr(fm, "key"),
				Value: optionalStringAttr(fm, "value"),
			})
		}
	}

	if im, ok := m["image"].(map[string]any); ok {
		ref.Image = &Image{
			URL:     stringAttr(im, "url"),
			AltText: stringAttr(im, "altText"),
			Width:   intAttr(im, "width"),
			Height:  intAttr(im, "height"),
		}
	}

	return ref
}

// connectionNodes returns the nodes of a GraphQL connection given either
// {nodes: [...]} or {edges: [{node: ...}]}. An edge without a node yields nil.
func connectionNodes(conn map[string]any) []any {
	if nodes, ok := conn["nodes"].([]any); ok {
		return nodes
	}
	edges, ok := conn["edges"].([]any)
	if !ok {
		return nil
	}
	nodes := make([]any, 0, len(edges))
	for _, edge := range edges {
		em, ok := edge.(map[string]any)
		if !ok {
			nodes = append(nodes, nil)
			continue
		}
		nodes = append(nodes, em["node"])
	}
	return nodes
}

func stringAttr(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func optionalStringAttr(m map[string]any, key string) *string {
	s, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func intAttr(m map[string]any, key string) int {
	switch n := m[key].(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}

func cloneRawField(rf RawField) RawField {
	out := rf
	if rf.Value != nil {
		v := *rf.Value
		out.Value = &v
	}
	if rf.Reference != nil {
		ref := cloneReference(*rf.Reference)
		out.Reference = &ref
	}
	if rf.References != nil {
		out.References = cloneReferences(rf.References)
	}
	return out
}

func cloneReference(r Reference) Reference {
	out := r
	if r.Fields != nil {
		out.Fields = make([]MetaobjectField, len(r.Fields))
		for i, f := range r.Fields {
			out.Fields[i] = MetaobjectField{Key: f.Key}
			if f.Value != nil {
				v := *f.Value
				out.Fields[i].Value = &v
			}
		}
	}
	if r.Image != nil {
		img := *r.Image
		out.Image = &img
	}
	out.Raw = cloneMap(r.Raw)
	return out
}

func cloneReferences(refs []Reference) []Reference {
	out := make([]Reference, len(refs))
	for i, r := range refs {
		out[i] = cloneReference(r)
	}
	return out
}

// cloneMap deep-copies decoded JSON so outputs never alias caller input.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
