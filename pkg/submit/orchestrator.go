// Package submit sequences the two dependent network calls that finalize a
// form: participant creation (when no participant is bound yet) followed by
// answer submission. The second call is never attempted when the first
// fails, and a re-entrant finalize while one is in flight is a no-op.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/datalab/go-crf/pkg/api"
	"github.com/datalab/go-crf/pkg/audit"
	"github.com/datalab/go-crf/pkg/draft"
	"github.com/datalab/go-crf/pkg/form"
)

// ErrInFlight reports a finalize attempt while another one is running.
var ErrInFlight = errors.New("submit: a submission is already in flight")

// IncompleteError blocks finalization: the form still has missing fields.
// Labels are in schema traversal order, ready for presentation.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("submit: %d campos incompletos: %s", len(e.Missing), strings.Join(e.Missing, ", "))
}

// Backend is the slice of the REST client the orchestrator depends on.
type Backend interface {
	CreateParticipant(ctx context.Context, req api.ParticipantRequest) (api.Participant, error)
	SaveAnswers(ctx context.Context, participantID int64, req api.AnswersRequest) error
	MarkNotCompletable(ctx context.Context, participantID int64, justification string, editorID int64) error
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger; the orchestrator is silent by default.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// Orchestrator coordinates audits, local drafts, and the backend calls for
// one capture session.
type Orchestrator struct {
	backend     Backend
	store       draft.Store
	auditor     audit.Auditor
	editorID    int64
	recruiterID int64
	log         zerolog.Logger

	inFlight atomic.Bool
}

// New constructs an Orchestrator. The editor and recruiter identifiers ride
// along on the respective backend payloads.
func New(backend Backend, store draft.Store, auditor audit.Auditor, editorID, recruiterID int64, options ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:     backend,
		store:       store,
		auditor:     auditor,
		editorID:    editorID,
		recruiterID: recruiterID,
		log:         zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	return o
}

// Finalize runs the completeness audit and, when the form is complete,
// performs the two sequential backend calls. On missing fields it persists
// a draft-tagged snapshot and returns an *IncompleteError without touching
// the network. On success it persists a final-tagged snapshot and returns
// the participant identifier the answers were stored under.
func (o *Orchestrator) Finalize(ctx context.Context, inst *form.Instance, key string, participantID int64) (int64, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return 0, ErrInFlight
	}
	defer o.inFlight.Store(false)

	if missing := o.auditor.MissingFields(inst); len(missing) > 0 {
		o.saveLocal(key, inst, draft.StatusDraft, participantID)
		o.log.Info().Int("missing", len(missing)).Str("key", key).Msg("finalize blocked by incomplete form")
		return 0, &IncompleteError{Missing: missing}
	}

	demo := demographics(inst)

	pid := participantID
	if pid == 0 {
		created, err := o.backend.CreateParticipant(ctx, api.ParticipantRequest{
			FullName:    demo.fullName,
			Phone:       demo.phone,
			Address:     demo.address,
			Group:       demo.group,
			RecruiterID: o.recruiterID,
		})
		if err != nil {
			o.log.Warn().Err(err).Msg("participant creation failed")
			return 0, err
		}
		pid = created.ID
	}

	err := o.backend.SaveAnswers(ctx, pid, api.AnswersRequest{
		EditorID: o.editorID,
		Answers:  AnswersMap(inst),
		FullName: demo.fullName,
		Phone:    demo.phone,
		Address:  demo.address,
		Group:    demo.group,
	})
	if err != nil {
		o.log.Warn().Err(err).Int64("participant", pid).Msg("answer submission failed")
		return 0, err
	}

	o.saveLocal(key, inst, draft.StatusFinal, pid)
	o.log.Info().Int64("participant", pid).Str("key", key).Msg("form finalized")
	return pid, nil
}

// SaveDraft persists a manually requested draft snapshot.
func (o *Orchestrator) SaveDraft(inst *form.Instance, key string, participantID int64) error {
	rec := draft.Record{
		Values:        inst.Snapshot(),
		Status:        draft.StatusDraft,
		ParticipantID: participantID,
		SavedAt:       time.Now(),
	}
	return o.store.Save(key, rec)
}

// SaveIncomplete records that the form cannot be completed, keeping a local
// draft and, when a participant record exists, flagging it on the backend
// with the given justification.
func (o *Orchestrator) SaveIncomplete(ctx context.Context, inst *form.Instance, key string, participantID int64, justification string) error {
	if err := o.SaveDraft(inst, key, participantID); err != nil {
		return err
	}
	if participantID == 0 {
		return nil
	}
	return o.backend.MarkNotCompletable(ctx, participantID, justification, o.editorID)
}

func (o *Orchestrator) saveLocal(key string, inst *form.Instance, status draft.Status, participantID int64) {
	rec := draft.Record{
		Values:        inst.Snapshot(),
		Status:        status,
		ParticipantID: participantID,
		SavedAt:       time.Now(),
	}
	if err := o.store.Save(key, rec); err != nil {
		// Local persistence is best effort; the submission outcome wins.
		o.log.Warn().Err(err).Str("key", key).Msg("local draft write failed")
	}
}

type demo struct {
	fullName string
	phone    string
	address  string
	group    string
}

func demographics(inst *form.Instance) demo {
	return demo{
		fullName: controlString(inst, form.IDFullName),
		phone:    controlString(inst, form.IDPhone),
		address:  controlString(inst, form.IDAddress),
		group:    inst.Group().WireTag(),
	}
}

func controlString(inst *form.Instance, id string) string {
	ctrl, ok := inst.Control(id)
	if !ok {
		return ""
	}
	return valueString(ctrl.Value())
}

// AnswersMap flattens the form into the variable answer map the backend
// stores: every non-empty schema field value stringified, multi-choice
// selections joined with commas, and the disabled derived value included.
// The group selector and the baseline demographic slots are excluded; they
// travel as dedicated payload fields instead of variables.
func AnswersMap(inst *form.Instance) map[string]string {
	out := make(map[string]string)
	for _, field := range inst.Schema().Fields() {
		if field.ID == form.IDGroup || field.ID == form.IDCode {
			continue
		}
		ctrl, ok := inst.Control(field.ID)
		if !ok {
			continue
		}
		value := ctrl.Value()
		if form.IsEmpty(value) {
			continue
		}
		out[field.ID] = valueString(value)
	}
	return out
}

func valueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
