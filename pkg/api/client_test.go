package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateParticipant(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody ParticipantRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"idParticipante": 42, "codigoParticipante": "P-042"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, WithToken("secreto"), WithHTTPClient(srv.Client()))
	p, err := client.CreateParticipant(context.Background(), ParticipantRequest{
		FullName:    "Ana Pérez",
		Group:       "CASO",
		RecruiterID: 3,
	})
	if err != nil {
		t.Fatalf("create participant: %v", err)
	}
	if p.ID != 42 || p.Code != "P-042" {
		t.Fatalf("unexpected participant: %+v", p)
	}
	if gotPath != "POST /participantes" {
		t.Fatalf("unexpected request: %s", gotPath)
	}
	if gotAuth != "Bearer secreto" {
		t.Fatalf("missing bearer token: %q", gotAuth)
	}
	if gotBody.FullName != "Ana Pérez" || gotBody.Group != "CASO" || gotBody.RecruiterID != 3 {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
}

func TestCreateParticipant_DataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"idParticipante": 7}}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL).CreateParticipant(context.Background(), ParticipantRequest{})
	if err != nil {
		t.Fatalf("create participant: %v", err)
	}
	if p.ID != 7 {
		t.Fatalf("envelope not unwrapped: %+v", p)
	}
}

func TestSaveAnswers(t *testing.T) {
	var gotPath string
	var gotBody AnswersRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := New(srv.URL).SaveAnswers(context.Background(), 42, AnswersRequest{
		EditorID: 9,
		Answers:  map[string]string{"EDAD": "44"},
	})
	if err != nil {
		t.Fatalf("save answers: %v", err)
	}
	if gotPath != "POST /participantes/42/respuestas" {
		t.Fatalf("unexpected request: %s", gotPath)
	}
	if gotBody.EditorID != 9 || gotBody.Answers["EDAD"] != "44" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
}

func TestMarkNotCompletable(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	err := New(srv.URL).MarkNotCompletable(context.Background(), 42, "participante retirado", 9)
	if err != nil {
		t.Fatalf("mark not completable: %v", err)
	}
	if gotPath != "POST /participantes/42/no-completable" {
		t.Fatalf("unexpected request: %s", gotPath)
	}
	if gotBody["justificacion"] != "participante retirado" || gotBody["usuarioEditorId"] != float64(9) {
		t.Fatalf("unexpected payload: %v", gotBody)
	}
}

func TestVariables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/variables" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"codigoVariable":"EDAD","enunciado":"Edad"}]}`))
	}))
	defer srv.Close()

	rows, err := New(srv.URL).Variables(context.Background())
	if err != nil {
		t.Fatalf("variables: %v", err)
	}
	if len(rows) != 1 || rows[0].Code != "EDAD" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestErrorMessagePassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "ya existe un participante con ese teléfono"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateParticipant(context.Background(), ParticipantRequest{})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("status: %d", apiErr.StatusCode)
	}
	if apiErr.Message != "ya existe un participante con ese teléfono" {
		t.Fatalf("server message must pass through verbatim, got %q", apiErr.Message)
	}
}

func TestErrorGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>panic</html>`))
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteParticipant(context.Background(), 1)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "la operación no pudo completarse" {
		t.Fatalf("unexpected fallback message: %q", apiErr.Message)
	}
}
