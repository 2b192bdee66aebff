// Package api is the REST client for the remote data-collection backend.
// The backend owns every wire shape here; the client only decodes what the
// engine consumes and tolerates the two response envelopes used across the
// backend's lineage (bare payloads and {data: ...} wrappers).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/datalab/go-crf/pkg/schema"
)

const defaultTimeout = 30 * time.Second

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient injects the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger attaches a logger; the client is silent by default.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// Client talks to the backend REST API.
type Client struct {
	base  string
	token string
	http  *http.Client
	log   zerolog.Logger
}

// New constructs a Client for the given base URL, e.g.
// "http://localhost:8080/api".
func New(base string, options ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: defaultTimeout},
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// ParticipantRequest is the creation payload. Group travels uppercased.
type ParticipantRequest struct {
	FullName    string `json:"nombreCompleto"`
	Phone       string `json:"telefono"`
	Address     string `json:"direccion"`
	Group       string `json:"grupo"`
	RecruiterID int64  `json:"usuarioReclutadorId"`
}

// Participant is the subset of the backend participant record the engine
// reads.
type Participant struct {
	ID       int64    `json:"idParticipante"`
	Code     string   `json:"codigoParticipante"`
	FullName string   `json:"nombreCompleto"`
	Phone    string   `json:"telefono"`
	Address  string   `json:"direccion"`
	Group    string   `json:"grupo"`
	Answers  []Answer `json:"respuestas"`
}

// Answer is one stored variable answer on a participant record.
type Answer struct {
	VariableCode string `json:"codigoVariable"`
	Value        string `json:"valor"`
}

// AnswersRequest submits the full answer map for a participant, with the
// core demographic fields alongside.
type AnswersRequest struct {
	EditorID int64             `json:"usuarioEditorId"`
	Answers  map[string]string `json:"respuestasMap"`
	FullName string            `json:"nombreCompleto"`
	Phone    string            `json:"telefono"`
	Address  string            `json:"direccion"`
	Group    string            `json:"grupo"`
}

// CreateParticipant registers a new participant and returns its record,
// including the backend-assigned identifier.
func (c *Client) CreateParticipant(ctx context.Context, req ParticipantRequest) (Participant, error) {
	var p Participant
	err := c.do(ctx, http.MethodPost, "/participantes", req, &p)
	return p, err
}

// Participant fetches a participant with its stored answers.
func (c *Client) Participant(ctx context.Context, id int64) (Participant, error) {
	var p Participant
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/participantes/%d", id), nil, &p)
	return p, err
}

// Participants lists every participant record.
func (c *Client) Participants(ctx context.Context) ([]Participant, error) {
	var out []Participant
	err := c.do(ctx, http.MethodGet, "/participantes", nil, &out)
	return out, err
}

// DeleteParticipant removes a participant record and its answers.
func (c *Client) DeleteParticipant(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/participantes/%d", id), nil, nil)
}

// SaveAnswers stores the answer map against an existing participant.
func (c *Client) SaveAnswers(ctx context.Context, participantID int64, req AnswersRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/participantes/%d/respuestas", participantID), req, nil)
}

// MarkNotCompletable flags a participant record as incomplete-by-design
// with a justification, e.g. a withdrawn participant.
func (c *Client) MarkNotCompletable(ctx context.Context, participantID int64, justification string, editorID int64) error {
	body := map[string]any{
		"justificacion":   justification,
		"usuarioEditorId": editorID,
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/participantes/%d/no-completable", participantID), body, nil)
}

// Variables fetches the raw variable rows that make up the dynamic schema.
func (c *Client) Variables(ctx context.Context) ([]schema.VariableRow, error) {
	raw, err := c.raw(ctx, http.MethodGet, "/variables", nil)
	if err != nil {
		return nil, err
	}
	return schema.DecodeRows(raw)
}

// VariableRequest creates a new schema variable.
type VariableRequest struct {
	Label     string `json:"enunciado"`
	Code      string `json:"codigoVariable"`
	TypeTag   string `json:"tipoDato"`
	Options   string `json:"opciones"`
	AppliesTo string `json:"aplicaA"`
	Section   string `json:"seccion"`
	Order     int    `json:"ordenEnunciado"`
	Required  bool   `json:"esObligatoria"`
	Rule      string `json:"reglaValidacion,omitempty"`
}

// CreateVariable adds a variable to the backend schema. Callers should
// invalidate their schema provider afterwards.
func (c *Client) CreateVariable(ctx context.Context, req VariableRequest) error {
	return c.do(ctx, http.MethodPost, "/variables", req, nil)
}

// DeleteVariable removes a variable by code. Callers should invalidate
// their schema provider afterwards.
func (c *Client) DeleteVariable(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodDelete, "/variables/"+code, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.raw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := decodeEnvelope(raw, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("api request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

// decodeEnvelope decodes either a bare payload or a {data: ...} wrapper.
func decodeEnvelope(raw []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(raw, out)
}
