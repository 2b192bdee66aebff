package draft

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultAutosaveInterval matches the reference implementation's 15-second
// background save cadence.
const DefaultAutosaveInterval = 15 * time.Second

// Autosaver periodically persists an autosave-tagged snapshot while a form
// session is open. Writes are fire and forget: failures are logged, never
// surfaced. Stop is idempotent and guarantees no write is scheduled after it
// returns, so a disposed session can never write to a stale key.
type Autosaver struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartAutosave launches the background saver. snapshot is invoked on every
// tick to capture the form's current values.
func StartAutosave(store Store, key string, interval time.Duration, snapshot func() map[string]any, log zerolog.Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	a := &Autosaver{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(a.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				rec := Record{
					Values:  snapshot(),
					Status:  StatusAutosave,
					SavedAt: time.Now(),
				}
				if err := store.Save(key, rec); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("autosave write failed")
					continue
				}
				log.Debug().Str("key", key).Msg("autosave written")
			}
		}
	}()
	return a
}

// Stop cancels the ticker and waits for the background goroutine to exit.
// Safe to call more than once.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})
	<-a.done
}
