// Package draft persists local, last-write-wins snapshots of form values so
// an interrupted capture session can resume on the same device. Drafts are
// never versioned: only the latest snapshot per key survives.
package draft

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status tags a stored snapshot. The wire values match the legacy local
// storage records so existing drafts keep loading.
type Status string

const (
	StatusAutosave Status = "autosave"
	StatusDraft    Status = "borrador"
	StatusFinal    Status = "completo"
)

// Record is a named snapshot of a form instance's values.
type Record struct {
	Values        map[string]any `json:"values"`
	Status        Status         `json:"estado"`
	ParticipantID int64          `json:"idParticipante,omitempty"`
	SavedAt       time.Time      `json:"savedAt"`
}

// Store is the local durable key→snapshot mapping. Writes are idempotent
// overwrites; concurrent writers race benignly to "most recent wins". All
// writes are best effort: the engine treats persistence failures as
// non-fatal.
type Store interface {
	Save(key string, rec Record) error
	Load(key string) (Record, bool, error)
	Delete(key string) error
}

// fallbackKey is shared by every "new, unsaved" session on a device that has
// neither an explicit record identifier nor a participant identifier.
const fallbackKey = "CRF_LOCAL"

// keyPrefix namespaces engine entries inside a shared store.
const keyPrefix = "crf_"

// ResolveKey picks the draft key for a session: the explicit record
// identifier when provided, else a key derived from the participant
// identifier, else the device-wide fallback.
func ResolveKey(recordID string, participantID int64) string {
	if recordID != "" {
		return recordID
	}
	if participantID > 0 {
		return fmt.Sprintf("CRF_PART_%d", participantID)
	}
	return fallbackKey
}

// NewRecordID mints a record identifier for a fresh capture session so its
// draft never collides with another session's.
func NewRecordID() string {
	return "CRF_NUEVO_" + uuid.NewString()
}

func storageKey(key string) string {
	return keyPrefix + key
}
