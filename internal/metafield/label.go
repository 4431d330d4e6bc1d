package metafield

// LabelSource extracts one label candidate from a reference.
type LabelSource struct {
	Name string
	Get  func(Reference) string
}

// LabelPriority is the ordered list of label candidates for a metaobject.
// The first non-empty candidate wins: the "name" field, then the "title"
// field, then the handle, then the id. A whitespace-only value is non-empty.
var LabelPriority = []LabelSource{
	{Name: "field:name", Get: fieldLabel("name")},
	{Name: "field:title", Get: fieldLabel("title")},
	{Name: "handle", Get: func(r Reference) string { return r.Handle }},
	{Name: "id", Get: func(r Reference) string { return r.ID }},
}

func fieldLabel(key string) func(Reference) string {
	return func(r Reference) string {
		v, _ := r.Field(key)
		return v
	}
}

// Label derives the human label of a metaobject using LabelPriority.
// It returns "" when every candidate is empty.
func Label(r Reference) string {
	label, _ := LabelWithSource(r)
	return label
}

// LabelWithSource is Label, also reporting which candidate produced it.
func LabelWithSource(r Reference) (string, string) {
	for _, src := range LabelPriority {
		if v := src.Get(r); v != "" {
			return v, src.Name
		}
	}
	return "", ""
}
