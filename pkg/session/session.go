// Package session ties the engine together for one capture session: it
// builds the form from the session schema, resolves the draft key, hydrates
// prior values, wires the derived-value calculator, runs autosave, and
// delegates saves and finalization.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/datalab/go-crf/pkg/audit"
	"github.com/datalab/go-crf/pkg/derived"
	"github.com/datalab/go-crf/pkg/draft"
	"github.com/datalab/go-crf/pkg/form"
	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/schema/source"
	"github.com/datalab/go-crf/pkg/submit"
	"github.com/datalab/go-crf/pkg/visibility"
)

// ErrClosed reports an operation on a session that has been closed.
var ErrClosed = errors.New("session: closed")

// Options configures a capture session.
type Options struct {
	// Provider supplies the session schema. Required.
	Provider *source.Provider

	// RecordID is the explicit local draft identifier for this session.
	// Leave empty to derive the key from ParticipantID or the shared
	// fallback.
	RecordID string

	// ParticipantID binds the session to an existing server-backed
	// participant. Zero means a new, unsaved participant.
	ParticipantID int64

	// Preload seeds control values, typically from a fetched participant
	// record. A local draft takes precedence over it in new mode.
	Preload map[string]any

	// Fresh discards any stored draft for the resolved key and starts
	// from a clean form.
	Fresh bool

	// Group is the initial group selection. Defaults to control.
	Group schema.Group

	// Store is the local draft store. Required.
	Store draft.Store

	// Backend performs the submission network calls. Required for
	// Finalize and SaveIncomplete.
	Backend submit.Backend

	EditorID    int64
	RecruiterID int64

	// Policy selects the completeness rule; the zero value is the strict,
	// authoritative policy.
	Policy audit.Policy

	// AutosaveInterval overrides the 15-second default.
	AutosaveInterval time.Duration

	// DisableAutosave skips the background saver, for one-shot flows.
	DisableAutosave bool

	// Logger is optional; nil means silent.
	Logger *zerolog.Logger
}

// Session is one open form over a schema. The engine assumes a single
// interactive driver; control values themselves are synchronized, so the
// autosaver can snapshot them while the driver writes.
type Session struct {
	schema  schema.Schema
	inst    *form.Instance
	roles   derived.Roles
	vis     visibility.Evaluator
	auditor audit.Auditor
	orch    *submit.Orchestrator
	store   draft.Store
	key     string
	log     zerolog.Logger

	participantID int64
	saver         *draft.Autosaver
	closeOnce     sync.Once
	closed        bool
}

// Open loads the schema, builds and hydrates the form, and starts autosave.
// In new mode (no participant bound) an existing draft under the resolved
// key wins over preload data for every identifier both carry.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Provider == nil {
		return nil, errors.New("session: schema provider is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session: draft store is required")
	}

	group := opts.Group
	if group == "" {
		group = schema.GroupControl
	}

	sch, err := opts.Provider.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	roles := derived.DetectRoles(sch)
	vis := visibility.New(roles.Derived)
	auditor := audit.New(opts.Policy, vis)

	s := &Session{
		schema:        sch,
		roles:         roles,
		vis:           vis,
		auditor:       auditor,
		store:         opts.Store,
		key:           draft.ResolveKey(opts.RecordID, opts.ParticipantID),
		participantID: opts.ParticipantID,
		log:           log,
	}
	s.orch = submit.New(opts.Backend, opts.Store, auditor, opts.EditorID, opts.RecruiterID,
		submit.WithLogger(log))

	s.inst = form.Build(sch, group)

	if opts.Fresh {
		if err := opts.Store.Delete(s.key); err != nil {
			s.log.Warn().Err(err).Str("key", s.key).Msg("draft delete failed on fresh start")
		}
		s.inst.Reset(group)
	}

	s.hydrate(opts)
	derived.Attach(s.inst, roles)

	if !opts.DisableAutosave {
		s.saver = draft.StartAutosave(opts.Store, s.key, opts.AutosaveInterval, s.inst.Snapshot, log)
	}
	return s, nil
}

func (s *Session) hydrate(opts Options) {
	if len(opts.Preload) > 0 {
		s.inst.Hydrate(opts.Preload)
	}

	// Draft recovery only applies to new, unsaved sessions; an existing
	// server-backed participant is the source of truth when editing.
	if opts.ParticipantID > 0 || opts.Fresh {
		return
	}
	rec, ok, err := s.store.Load(s.key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("draft load failed")
		return
	}
	if !ok || rec.Status == draft.StatusFinal {
		return
	}
	s.inst.Hydrate(rec.Values)
	s.log.Debug().Str("key", s.key).Msg("draft recovered")
}

// Instance exposes the live form for interactive drivers.
func (s *Session) Instance() *form.Instance { return s.inst }

// Schema returns the session schema.
func (s *Session) Schema() schema.Schema { return s.schema }

// Visibility returns the evaluator configured for this session, with the
// derived field force-hidden.
func (s *Session) Visibility() visibility.Evaluator { return s.vis }

// Roles returns the detected derived-value role bindings.
func (s *Session) Roles() derived.Roles { return s.roles }

// Key returns the resolved draft key.
func (s *Session) Key() string { return s.key }

// ParticipantID returns the bound participant identifier, zero when the
// session has not created one yet.
func (s *Session) ParticipantID() int64 { return s.participantID }

// MissingFields runs the completeness audit against the current values.
func (s *Session) MissingFields() []string {
	return s.auditor.MissingFields(s.inst)
}

// SaveDraft persists a manual draft snapshot.
func (s *Session) SaveDraft() error {
	if s.closed {
		return ErrClosed
	}
	return s.orch.SaveDraft(s.inst, s.key, s.participantID)
}

// Finalize submits the form. On success the participant identifier is bound
// to the session and autosave stops for good.
func (s *Session) Finalize(ctx context.Context) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	pid, err := s.orch.Finalize(ctx, s.inst, s.key, s.participantID)
	if err != nil {
		return 0, err
	}
	s.participantID = pid
	s.stopAutosave()
	return pid, nil
}

// SaveIncomplete keeps a local draft and flags the backend record, when one
// exists, as not completable with the given justification.
func (s *Session) SaveIncomplete(ctx context.Context, justification string) error {
	if s.closed {
		return ErrClosed
	}
	return s.orch.SaveIncomplete(ctx, s.inst, s.key, s.participantID, justification)
}

// Close stops autosave and marks the session unusable. Safe to call more
// than once; no draft write can happen after it returns.
func (s *Session) Close() {
	s.stopAutosave()
	s.closed = true
}

func (s *Session) stopAutosave() {
	s.closeOnce.Do(func() {
		if s.saver != nil {
			s.saver.Stop()
		}
	})
}
