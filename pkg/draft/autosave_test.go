package draft

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestAutosaveWritesAndStops(t *testing.T) {
	store := NewMemoryStore()
	snapshot := func() map[string]any {
		return map[string]any{"EDAD": "44"}
	}

	saver := StartAutosave(store, "CRF_LOCAL", 10*time.Millisecond, snapshot, zerolog.Nop())

	deadline := time.After(2 * time.Second)
	for {
		if rec, ok, _ := store.Load("CRF_LOCAL"); ok {
			if rec.Status != StatusAutosave {
				t.Fatalf("autosave status: %q", rec.Status)
			}
			if rec.Values["EDAD"] != "44" {
				t.Fatalf("autosave values: %v", rec.Values)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("no autosave write before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	saver.Stop()
	saver.Stop() // idempotent

	// No write may land after Stop returns.
	_ = store.Delete("CRF_LOCAL")
	time.Sleep(50 * time.Millisecond)
	if _, ok, _ := store.Load("CRF_LOCAL"); ok {
		t.Fatalf("autosave wrote after Stop")
	}
}
