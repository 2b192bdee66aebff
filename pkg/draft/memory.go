package draft

import "sync"

// MemoryStore is an in-process Store used by tests and ephemeral sessions.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Save overwrites the snapshot stored under key.
func (m *MemoryStore) Save(key string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[storageKey(key)] = cloneRecord(rec)
	return nil
}

// Load returns the snapshot stored under key, if any.
func (m *MemoryStore) Load(key string) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[storageKey(key)]
	if !ok {
		return Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

// Delete removes the snapshot stored under key.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, storageKey(key))
	return nil
}

func cloneRecord(rec Record) Record {
	out := rec
	if rec.Values != nil {
		out.Values = make(map[string]any, len(rec.Values))
		for k, v := range rec.Values {
			if sel, ok := v.([]string); ok {
				v = append([]string(nil), sel...)
			}
			out.Values[k] = v
		}
	}
	return out
}
