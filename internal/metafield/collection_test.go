package metafield

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeAllEdges(t *testing.T) {
	container := decode(t, `{"edges":[
		{"node":{"key":"wood","type":"single_line_text_field","value":"Oak"}},
		{"node":null}
	]}`)

	fields := NormalizeAll(container)
	if len(fields) != 1 {
		t.Fatalf("got %d fields, want 1", len(fields))
	}
	if fields[0].Key != "wood" {
		t.Errorf("key = %q, want wood", fields[0].Key)
	}
}

func TestCollectShapes(t *testing.T) {
	tests := []struct {
		name        string
		container   any
		wantKeys    []string
		wantDropped int
	}{
		{
			name:        "plain array with nulls",
			container:   decode(t, `[{"key":"a","type":"single_line_text_field","value":"1"},null,"junk",{"key":"b"}]`),
			wantKeys:    []string{"a", "b"},
			wantDropped: 2,
		},
		{
			name:      "nodes connection",
			container: decode(t, `{"nodes":[{"key":"a"},{"key":"b"}]}`),
			wantKeys:  []string{"a", "b"},
		},
		{
			name:        "edge that is not an object",
			container:   decode(t, `{"edges":[{"node":{"key":"a"}},7]}`),
			wantKeys:    []string{"a"},
			wantDropped: 1,
		},
		{
			name:      "typed raw fields",
			container: []RawField{{Key: "a"}, {Key: "b"}},
			wantKeys:  []string{"a", "b"},
		},
		{
			name:        "typed raw field pointers",
			container:   []*RawField{{Key: "a"}, nil},
			wantKeys:    []string{"a"},
			wantDropped: 1,
		},
		{
			name:        "map slice",
			container:   []map[string]any{{"key": "a"}, nil},
			wantKeys:    []string{"a"},
			wantDropped: 1,
		},
		{
			name:      "unrecognized container",
			container: "nope",
			wantKeys:  []string{},
		},
		{
			name:      "object without connection",
			container: decode(t, `{"key":"a"}`),
			wantKeys:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Collect(tt.container)
			keys := make([]string, 0, len(c.Fields))
			for _, f := range c.Fields {
				keys = append(keys, f.Key)
			}
			if diff := cmp.Diff(tt.wantKeys, keys); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
			if c.Dropped != tt.wantDropped {
				t.Errorf("dropped = %d, want %d", c.Dropped, tt.wantDropped)
			}
		})
	}
}

func TestByKey(t *testing.T) {
	fields := []NormalizedField{
		NormalizeField(RawField{Key: "wood", Type: "single_line_text_field", Value: strPtr("Oak")}),
		NormalizeField(RawField{Key: "size", Type: "number_integer", Value: strPtr("3")}),
		NormalizeField(RawField{Key: "wood", Type: "single_line_text_field", Value: strPtr("Walnut")}),
	}

	t.Run("last wins", func(t *testing.T) {
		m, err := ByKey(fields, DuplicateLast)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(m) != 2 {
			t.Fatalf("got %d keys, want 2", len(m))
		}
		if m["wood"].Display.String() != "Walnut" {
			t.Errorf("wood = %q, want Walnut", m["wood"].Display.String())
		}
	})

	t.Run("first wins", func(t *testing.T) {
		m, err := ByKey(fields, DuplicateFirst)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m["wood"].Display.String() != "Oak" {
			t.Errorf("wood = %q, want Oak", m["wood"].Display.String())
		}
	})

	t.Run("reject", func(t *testing.T) {
		_, err := ByKey(fields, DuplicateReject)
		if !errors.Is(err, ErrDuplicateKey) {
			t.Fatalf("err = %v, want ErrDuplicateKey", err)
		}
		if _, err := ByKey(fields[:2], DuplicateReject); err != nil {
			t.Errorf("unexpected error without duplicates: %v", err)
		}
	})

	t.Run("index is last wins", func(t *testing.T) {
		if Index(fields)["wood"].Display.String() != "Walnut" {
			t.Error("Index should keep the last field")
		}
	})
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := map[string]DuplicatePolicy{
		"":        DuplicateLast,
		"last":    DuplicateLast,
		" First ": DuplicateFirst,
		"REJECT":  DuplicateReject,
	}
	for in, want := range tests {
		got, err := ParseDuplicatePolicy(in)
		if err != nil {
			t.Errorf("ParseDuplicatePolicy(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseDuplicatePolicy(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseDuplicatePolicy("merge"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
