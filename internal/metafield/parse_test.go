package metafield

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseRawField(t *testing.T) {
	t.Run("wrong attribute types are treated as absent", func(t *testing.T) {
		rf, ok := ParseRawField(decode(t, `{"key":7,"namespace":"custom","type":["x"],"value":12,"reference":"gid://1","references":[1,2]}`))
		if !ok {
			t.Fatal("expected object to parse")
		}
		want := RawField{Namespace: "custom"}
		if diff := cmp.Diff(want, rf); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("references accept edges", func(t *testing.T) {
		rf, _ := ParseRawField(decode(t, `{"key":"k","references":{"edges":[{"node":{"__typename":"Metaobject","id":"1"}},{"node":null},{"node":{"__typename":"Metaobject","id":"2"}}]}}`))
		if len(rf.References) != 2 {
			t.Fatalf("got %d references, want 2", len(rf.References))
		}
		if rf.References[0].ID != "1" || rf.References[1].ID != "2" {
			t.Errorf("unexpected references: %+v", rf.References)
		}
	})

	t.Run("typed values are copied", func(t *testing.T) {
		src := &RawField{Key: "k", Value: strPtr("v"), Reference: &Reference{ID: "1"}}
		rf, ok := ParseRawField(src)
		if !ok {
			t.Fatal("expected *RawField to parse")
		}
		*rf.Value = "changed"
		rf.Reference.ID = "changed"
		if *src.Value != "v" || src.Reference.ID != "1" {
			t.Error("ParseRawField aliased its input")
		}
	})
}

func TestParseReference(t *testing.T) {
	ref, ok := ParseReference(decode(t, `{
		"__typename":"MediaImage","id":"gid://img",
		"image":{"url":"https://cdn/a.jpg","altText":"A","width":800.0,"height":"600"},
		"fields":[{"key":"name","value":"n"},"junk",{"key":"empty","value":null}]
	}`))
	if !ok {
		t.Fatal("expected reference to parse")
	}

	want := Reference{
		Typename: TypenameMediaImage,
		ID:       "gid://img",
		Fields:   []MetaobjectField{{Key: "name", Value: strPtr("n")}, {Key: "empty"}},
		Image:    &Image{URL: "https://cdn/a.jpg", AltText: "A", Width: 800, Height: 600},
	}
	if diff := cmp.Diff(want, ref, cmpopts.IgnoreFields(Reference{}, "Raw")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if ref.Raw["__typename"] != TypenameMediaImage {
		t.Errorf("raw object not kept: %v", ref.Raw)
	}

	for _, bad := range []any{nil, "gid://1", 3, (*Reference)(nil)} {
		if _, ok := ParseReference(bad); ok {
			t.Errorf("ParseReference(%#v) = ok, want invalid", bad)
		}
	}
}

func TestSplitType(t *testing.T) {
	tests := []struct {
		declared string
		kind     Kind
		isList   bool
	}{
		{"single_line_text_field", KindSingleLineText, false},
		{"list.single_line_text_field", KindSingleLineText, true},
		{"list.file_reference", KindFileReference, true},
		{"", Kind(""), false},
		{"list.", Kind(""), true},
	}
	for _, tt := range tests {
		kind, isList := SplitType(tt.declared)
		if kind != tt.kind || isList != tt.isList {
			t.Errorf("SplitType(%q) = (%q, %v), want (%q, %v)", tt.declared, kind, isList, tt.kind, tt.isList)
		}
	}
}

func TestKindStrategy(t *testing.T) {
	tests := map[Kind]Strategy{
		KindSingleLineText:      StrategyText,
		KindMultiLineText:       StrategyText,
		KindNumberInteger:       StrategyNumber,
		KindNumberDecimal:       StrategyNumber,
		KindMetaobjectReference: StrategyMetaobject,
		KindFileReference:       StrategyFile,
		Kind("rating"):          StrategyText,
	}
	for kind, want := range tests {
		if got := kind.Strategy(); got != want {
			t.Errorf("%q.Strategy() = %q, want %q", kind, got, want)
		}
	}
	if Kind("rating").Known() {
		t.Error("rating should not be a known kind")
	}
	if !KindFileReference.Known() {
		t.Error("file_reference should be a known kind")
	}
}

func TestDisplay(t *testing.T) {
	scalar := ScalarDisplay("Oak")
	if scalar.IsList() || scalar.String() != "Oak" || scalar.IsEmpty() {
		t.Errorf("unexpected scalar display: %#v", scalar)
	}
	if diff := cmp.Diff([]string{"Oak"}, scalar.Strings()); diff != "" {
		t.Errorf("Strings mismatch (-want +got):\n%s", diff)
	}

	list := ListDisplay(nil)
	if !list.IsList() || !list.IsEmpty() {
		t.Errorf("unexpected list display: %#v", list)
	}
	data, err := list.MarshalJSON()
	if err != nil || string(data) != "[]" {
		t.Errorf("MarshalJSON = %s, %v; want []", data, err)
	}

	var decoded Display
	if err := decoded.UnmarshalJSON([]byte(`["a","b"]`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !decoded.Equal(ListDisplay([]string{"a", "b"})) {
		t.Errorf("decoded = %#v", decoded)
	}
	if decoded.String() != "a, b" {
		t.Errorf("String = %q", decoded.String())
	}
	if err := decoded.UnmarshalJSON([]byte(`"x"`)); err != nil || !decoded.Equal(ScalarDisplay("x")) {
		t.Errorf("decoded scalar = %#v, %v", decoded, err)
	}
	if ScalarDisplay("a").Equal(ListDisplay([]string{"a"})) {
		t.Error("scalar and list displays must not be equal")
	}
}
