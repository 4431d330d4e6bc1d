// Package metafield normalizes loosely-typed storefront metafields into
// display-ready records.
package metafield

import (
	"encoding/json"
	"strings"
)

// ListPrefix marks a declared type as multi-valued ("list.single_line_text_field").
const ListPrefix = "list."

// Kind is a declared metafield type with any list prefix stripped.
type Kind string

const (
	KindSingleLineText      Kind = "single_line_text_field"
	KindMultiLineText       Kind = "multi_line_text_field"
	KindNumberInteger       Kind = "number_integer"
	KindNumberDecimal       Kind = "number_decimal"
	KindMetaobjectReference Kind = "metaobject_reference"
	KindFileReference       Kind = "file_reference"
)

// Strategy names the normalization applied to a kind.
type Strategy string

const (
	StrategyText       Strategy = "text"
	StrategyNumber     Strategy = "number"
	StrategyMetaobject Strategy = "metaobject"
	StrategyFile       Strategy = "file"
)

// KnownKinds lists the kinds with a dedicated strategy, in display order.
var KnownKinds = []Kind{
	KindSingleLineText,
	KindMultiLineText,
	KindNumberInteger,
	KindNumberDecimal,
	KindMetaobjectReference,
	KindFileReference,
}

// SplitType splits a declared type into its kind and list flag.
func SplitType(declared string) (Kind, bool) {
	if strings.HasPrefix(declared, ListPrefix) {
		return Kind(strings.TrimPrefix(declared, ListPrefix)), true
	}
	return Kind(declared), false
}

// Strategy returns the normalization strategy for k.
// Unrecognized kinds fall back to text passthrough.
func (k Kind) Strategy() Strategy {
	switch k {
	case KindNumberInteger, KindNumberDecimal:
		return StrategyNumber
	case KindMetaobjectReference:
		return StrategyMetaobject
	case KindFileReference:
		return StrategyFile
	default:
		return StrategyText
	}
}

// Known reports whether k has a dedicated strategy.
func (k Kind) Known() bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Reference variant discriminators (the __typename of a resolved reference).
const (
	TypenameMetaobject  = "Metaobject"
	TypenameMediaImage  = "MediaImage"
	TypenameVideo       = "Video"
	TypenameModel3d     = "Model3d"
	TypenameGenericFile = "GenericFile"
)

// RawField is one metafield as returned by the storefront query.
type RawField struct {
	Key        string      `json:"key"`
	Namespace  string      `json:"namespace"`
	Type       string      `json:"type"`
	Value      *string     `json:"value"`
	Reference  *Reference  `json:"reference,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// MetaobjectField is one key/value pair of a metaobject.
type MetaobjectField struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// Image describes a media image.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Reference is a resolved reference. Typename selects which of the other
// attributes are meaningful; Raw keeps the decoded object for variants that are
// passed through without normalization.
type Reference struct {
	Typename string            `json:"__typename"`
	ID       string            `json:"id,omitempty"`
	Handle   string            `json:"handle,omitempty"`
	Fields   []MetaobjectField `json:"fields,omitempty"`
	Image    *Image            `json:"image,omitempty"`
	Raw      map[string]any    `json:"-"`
}

// IsMetaobject reports whether r is the Metaobject variant.
func (r Reference) IsMetaobject() bool {
	return r.Typename == TypenameMetaobject
}

// Field returns the value of the metaobject field named key.
func (r Reference) Field(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key && f.Value != nil {
			return *f.Value, true
		}
	}
	return "", false
}

// NormalizedField is the display-ready projection of a RawField.
type NormalizedField struct {
	Key       string      `json:"key"`
	Namespace string      `json:"namespace"`
	RawType   string      `json:"rawType"`
	Kind      Kind        `json:"kind"`
	Value     any         `json:"value"`
	List      []any       `json:"list"`
	Refs      []Reference `json:"refs"`
	Display   Display     `json:"display"`
	MF        RawField    `json:"mf"`
}

// IsList reports whether the field was declared multi-valued.
func (f NormalizedField) IsList() bool {
	return f.List != nil
}

// QualifiedKey returns "namespace.key".
func (f NormalizedField) QualifiedKey() string {
	if f.Namespace == "" {
		return f.Key
	}
	return f.Namespace + "." + f.Key
}

// Display is the UI-facing projection: a single string for singular fields,
// a list of strings for list fields.
type Display struct {
	scalar string
	items  []string
	list   bool
}

// ScalarDisplay creates a singular Display.
func ScalarDisplay(s string) Display {
	return Display{scalar: s}
}

// ListDisplay creates a list Display. A nil slice is stored as empty.
func ListDisplay(items []string) Display {
	if items == nil {
		items = []string{}
	}
	return Display{items: items, list: true}
}

// IsList reports whether the display is a list of strings.
func (d Display) IsList() bool {
	return d.list
}

// String returns the scalar display, or the list items joined by ", ".
func (d Display) String() string {
	if d.list {
		return strings.Join(d.items, ", ")
	}
	return d.scalar
}

// Strings returns the list items, or the scalar as a one-element list.
// An empty scalar yields an empty list.
func (d Display) Strings() []string {
	if d.list {
		out := make([]string, len(d.items))
		copy(out, d.items)
		return out
	}
	if d.scalar == "" {
		return []string{}
	}
	return []string{d.scalar}
}

// IsEmpty reports whether there is nothing to display.
func (d Display) IsEmpty() bool {
	if d.list {
		return len(d.items) == 0
	}
	return d.scalar == ""
}

// MarshalJSON implements json.Marshaler.
func (d Display) MarshalJSON() ([]byte, error) {
	if d.list {
		return json.Marshal(d.items)
	}
	return json.Marshal(d.scalar)
}

// Equal reports whether d and o have the same shape and contents.
func (d Display) Equal(o Display) bool {
	if d.list != o.list {
		return false
	}
	if !d.list {
		return d.scalar == o.scalar
	}
	if len(d.items) != len(o.items) {
		return false
	}
	for i := range d.items {
		if d.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Display) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ScalarDisplay("")
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*d = ListDisplay(items)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ScalarDisplay(s)
	return nil
}
