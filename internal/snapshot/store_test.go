package snapshot

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aidanlsb/metafold/internal/metafield"
)

func strPtr(s string) *string { return &s }

func sampleFields() []metafield.NormalizedField {
	return metafield.NormalizeAll([]any{
		metafield.RawField{Key: "wood", Namespace: "custom", Type: "single_line_text_field", Value: strPtr("Oak")},
		metafield.RawField{Key: "sizes", Namespace: "custom", Type: "list.number_integer", Value: strPtr("[1, 2]")},
		metafield.RawField{Key: "weight", Namespace: "custom", Type: "number_decimal", Value: strPtr("abc")},
	})
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	snap, err := s.Save("Spring Launch", "product.json", sampleFields())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap.Name != "spring-launch" {
		t.Errorf("Name = %q, want spring-launch", snap.Name)
	}
	if snap.FieldCount != 3 {
		t.Errorf("FieldCount = %d, want 3", snap.FieldCount)
	}

	got, entries, err := s.Get("spring launch")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	want, err := EntriesFromFields(sampleFields())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	if string(entries[1].Value) != "[1,2]" {
		t.Errorf("list value = %s, want [1,2]", entries[1].Value)
	}
	if entries[2].Value != nil {
		t.Errorf("failed numeric value = %s, want nil", entries[2].Value)
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Save("launch", "a.json", sampleFields()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save("launch", "b.json", sampleFields()[:1]); err != nil {
		t.Fatal(err)
	}

	snap, entries, err := s.Get("launch")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Source != "b.json" || len(entries) != 1 {
		t.Errorf("got source %q with %d entries, want b.json with 1", snap.Source, len(entries))
	}

	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("List returned %d snapshots, want 1", len(list))
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		if _, err := s.Save(name, "", nil); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, snap := range list {
		names = append(names, snap.Name)
	}
	if diff := cmp.Diff([]string{"third", "second", "first"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Save("launch", "", sampleFields()); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("launch"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := s.Get("launch"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := s.Delete("launch"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("%d orphaned entries", count)
	}
}

func TestInvalidName(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Save("  !!! ", "", nil); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Save err = %v, want ErrInvalidName", err)
	}
	if _, _, err := s.Get(""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Get err = %v, want ErrInvalidName", err)
	}
}

func TestOpenPersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Save("launch", "", sampleFields()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	_, entries, err := s.Get("launch")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries after reopen, want 3", len(entries))
	}
}

func TestOpenRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if _, err := Open(path); !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("Open err = %v, want ErrVersionMismatch", err)
	}
}
