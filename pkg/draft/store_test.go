package draft

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestResolveKey(t *testing.T) {
	if got := ResolveKey("CRF_NUEVO_abc", 7); got != "CRF_NUEVO_abc" {
		t.Fatalf("explicit record id should win, got %q", got)
	}
	if got := ResolveKey("", 7); got != "CRF_PART_7" {
		t.Fatalf("participant key: %q", got)
	}
	if got := ResolveKey("", 0); got != "CRF_LOCAL" {
		t.Fatalf("fallback key: %q", got)
	}
}

func TestNewRecordID(t *testing.T) {
	a, b := NewRecordID(), NewRecordID()
	if !strings.HasPrefix(a, "CRF_NUEVO_") {
		t.Fatalf("unexpected prefix: %q", a)
	}
	if a == b {
		t.Fatalf("record ids should be unique")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	rec := Record{
		Values:  map[string]any{"EDAD": "44", "SINTOMAS": []string{"Tos"}},
		Status:  StatusDraft,
		SavedAt: time.Now(),
	}
	if err := store.Save("CRF_LOCAL", rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Load("CRF_LOCAL")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(rec.Values, got.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	// Mutating the loaded record must not leak back into the store.
	got.Values["EDAD"] = "99"
	got.Values["SINTOMAS"].([]string)[0] = "mutado"
	again, _, _ := store.Load("CRF_LOCAL")
	if again.Values["EDAD"] != "44" {
		t.Fatalf("store leaked a caller mutation: %v", again.Values)
	}
	if again.Values["SINTOMAS"].([]string)[0] != "Tos" {
		t.Fatalf("store leaked a selection mutation: %v", again.Values)
	}

	if err := store.Delete("CRF_LOCAL"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Load("CRF_LOCAL"); ok {
		t.Fatalf("record should be gone after delete")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	rec := Record{
		Values:        map[string]any{"EDAD": "44"},
		Status:        StatusAutosave,
		ParticipantID: 12,
		SavedAt:       time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Save("CRF_PART_12", rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saves are idempotent overwrites.
	rec.Status = StatusDraft
	if err := store.Save("CRF_PART_12", rec); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, ok, err := store.Load("CRF_PART_12")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Status != StatusDraft || got.ParticipantID != 12 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Values["EDAD"] != "44" {
		t.Fatalf("values: %v", got.Values)
	}

	if _, ok, err := store.Load("NO_EXISTE"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "CRF_PART_12" {
		t.Fatalf("keys should strip the namespace prefix: %v", keys)
	}

	if err := store.Delete("CRF_PART_12"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Load("CRF_PART_12"); ok {
		t.Fatalf("record should be gone after delete")
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
