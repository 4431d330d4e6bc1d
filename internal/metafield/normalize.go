package metafield

// Normalize converts one loosely-shaped field into a NormalizedField.
// The boolean is false when input is not object-like ("not a field").
// Normalize never panics on malformed content; bad values degrade to empty
// output instead.
func Normalize(input any) (NormalizedField, bool) {
	rf, ok := ParseRawField(input)
	if !ok {
		return NormalizedField{}, false
	}
	return NormalizeField(rf), true
}

// NormalizeField normalizes an already-typed raw field.
func NormalizeField(rf RawField) NormalizedField {
	rf = cloneRawField(rf)
	kind, isList := SplitType(rf.Type)
	refs := collectRefs(rf)

	nf := NormalizedField{
		Key:       rf.Key,
		Namespace: rf.Namespace,
		RawType:   rf.Type,
		Kind:      kind,
		Refs:      refs,
		MF:        rf,
	}

	switch kind.Strategy() {
	case StrategyNumber:
		normalizeNumber(&nf, rf.Value, isList)
	case StrategyMetaobject:
		normalizeMetaobject(&nf, isList)
	case StrategyFile:
		normalizeFile(&nf, isList)
	default:
		normalizeText(&nf, rf.Value, isList)
	}

	return nf
}

// collectRefs prefers the reference list, then the single reference.
// The result is never nil.
func collectRefs(rf RawField) []Reference {
	if len(rf.References) > 0 {
		return cloneReferences(rf.References)
	}
	if rf.Reference != nil {
		return []Reference{cloneReference(*rf.Reference)}
	}
	return []Reference{}
}

func normalizeText(nf *NormalizedField, raw *string, isList bool) {
	if isList {
		items := parseList(raw)
		display := make([]string, len(items))
		for i, item := range items {
			display[i] = displayString(item)
		}
		nf.List = items
		nf.Display = ListDisplay(display)
		return
	}

	if raw == nil {
		nf.Display = ScalarDisplay("")
		return
	}
	nf.Value = *raw
	nf.Display = ScalarDisplay(*raw)
}

func normalizeNumber(nf *NormalizedField, raw *string, isList bool) {
	if isList {
		items := parseList(raw)
		list := make([]any, 0, len(items))
		display := make([]string, 0, len(items))
		for _, item := range items {
			n, ok := coerceNumber(item)
			if !ok {
				continue
			}
			list = append(list, n)
			display = append(display, formatNumber(n))
		}
		nf.List = list
		nf.Display = ListDisplay(display)
		return
	}

	if raw == nil {
		nf.Display = ScalarDisplay("")
		return
	}
	n, ok := coerceNumericString(*raw)
	if !ok {
		nf.Display = ScalarDisplay("")
		return
	}
	nf.Value = n
	nf.Display = ScalarDisplay(formatNumber(n))
}

func normalizeMetaobject(nf *NormalizedField, isList bool) {
	if isList {
		list := make([]any, 0, len(nf.Refs))
		display := make([]string, 0, len(nf.Refs))
		for _, ref := range nf.Refs {
			if !ref.IsMetaobject() {
				continue
			}
			ref := cloneReference(ref)
			list = append(list, &ref)
			display = append(display, Label(ref))
		}
		nf.List = list
		nf.Display = ListDisplay(display)
		return
	}

	for _, ref := range nf.Refs {
		if !ref.IsMetaobject() {
			continue
		}
		ref := cloneReference(ref)
		nf.Value = &ref
		nf.Display = ScalarDisplay(Label(ref))
		return
	}
	nf.Display = ScalarDisplay("")
}

func normalizeFile(nf *NormalizedField, isList bool) {
	if isList {
		list := make([]any, 0, len(nf.Refs))
		display := make([]string, 0, len(nf.Refs))
		for _, ref := range nf.Refs {
			img := ExtractImage(ref)
			if img == nil {
				continue
			}
			list = append(list, img)
			display = append(display, img.URL)
		}
		nf.List = list
		nf.Display = ListDisplay(display)
		return
	}

	if len(nf.Refs) > 0 {
		if img := ExtractImage(nf.Refs[0]); img != nil {
			nf.Value = img
			nf.Display = ScalarDisplay(img.URL)
			return
		}
	}
	nf.Display = ScalarDisplay("")
}
