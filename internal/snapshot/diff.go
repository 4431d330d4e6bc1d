package snapshot

import (
	"bytes"
	"sort"
)

// ChangeType classifies one difference between two snapshots.
type ChangeType string

const (
	Added   ChangeType = "added"
	Removed ChangeType = "removed"
	Changed ChangeType = "changed"
)

// Change is a single field difference.
type Change struct {
	Key    string     `json:"key"`
	Type   ChangeType `json:"type"`
	Before *Entry     `json:"before,omitempty"`
	After  *Entry     `json:"after,omitempty"`
}

// Diff compares two entry sets by qualified key. A field is changed when its
// declared type, display or value differs. When a key repeats within one set
// the last occurrence is compared. Results are sorted by key.
func Diff(before, after []Entry) []Change {
	old := lastByKey(before)
	cur := lastByKey(after)

	var changes []Change
	for key, b := range old {
		a, ok := cur[key]
		if !ok {
			changes = append(changes, Change{Key: key, Type: Removed, Before: b})
			continue
		}
		if !sameEntry(b, a) {
			changes = append(changes, Change{Key: key, Type: Changed, Before: b, After: a})
		}
	}
	for key, a := range cur {
		if _, ok := old[key]; !ok {
			changes = append(changes, Change{Key: key, Type: Added, After: a})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Key < changes[j].Key
	})
	return changes
}

func lastByKey(entries []Entry) map[string]*Entry {
	out := make(map[string]*Entry, len(entries))
	for i := range entries {
		e := entries[i]
		out[e.QualifiedKey()] = &e
	}
	return out
}

func sameEntry(a, b *Entry) bool {
	return a.RawType == b.RawType &&
		a.Display.Equal(b.Display) &&
		bytes.Equal(a.Value, b.Value)
}
