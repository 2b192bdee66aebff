package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/datalab/go-crf/pkg/schema"
)

func TestProviderLoad_URLRowsAndCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"data":[{"codigoVariable":"EDAD","enunciado":"Edad","tipoDato":"Numero"}]}`))
	}))
	defer srv.Close()

	p := New(FromURL(srv.URL), WithHTTPClient(srv.Client()))

	s, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.FieldByID("EDAD"); !ok {
		t.Fatalf("expected row-derived schema, got %+v", s)
	}

	if _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected cached second load, got %d fetches", hits)
	}

	p.Invalidate()
	if _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("load after invalidate: %v", err)
	}
	if hits != 2 {
		t.Fatalf("invalidate should force a refetch, got %d fetches", hits)
	}
}

func TestProviderLoad_FallbackNotCached(t *testing.T) {
	down := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"codigoVariable":"SEXO","enunciado":"Sexo"}]`))
	}))
	defer srv.Close()

	p := New(FromURL(srv.URL), WithHTTPClient(srv.Client()))

	s, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("load with source down: %v", err)
	}
	if _, ok := s.FieldByID("EDAD"); !ok {
		t.Fatalf("expected built-in fallback schema, got %+v", s)
	}

	// Fallback results are not cached: once the source recovers the real
	// schema replaces it.
	down = false
	s, err = p.Load(context.Background())
	if err != nil {
		t.Fatalf("load after recovery: %v", err)
	}
	if _, ok := s.FieldByID("SEXO"); !ok {
		t.Fatalf("expected fetched schema after recovery, got %+v", s)
	}
}

func TestProviderLoad_EmptySchemaFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	custom := schema.Schema{Sections: []schema.Section{
		{Title: "Propia", Fields: []schema.Field{{ID: "X", Label: "X", Type: schema.FieldTypeText}}},
	}}
	p := New(FromURL(srv.URL), WithHTTPClient(srv.Client()), WithFallback(custom))

	s, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.FieldByID("X"); !ok {
		t.Fatalf("expected configured fallback, got %+v", s)
	}
}

func TestProviderLoad_FileDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	doc := []byte("sections:\n  - title: Generales\n    fields:\n      - id: PESO\n        label: Peso\n        type: numero\n")
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("write schema file: %v", err)
	}

	s, err := New(FromFile(path)).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f, ok := s.FieldByID("PESO")
	if !ok || f.Type != schema.FieldTypeNumber {
		t.Fatalf("unexpected schema: %+v", s)
	}
}

func TestProviderLoad_FSDocument(t *testing.T) {
	fsys := fstest.MapFS{
		"instrument.json": &fstest.MapFile{
			Data: []byte(`{"sections":[{"title":"G","fields":[{"id":"TALLA","label":"Talla","type":"numero"}]}]}`),
		},
	}

	p := New(FromFS("instrument.json"), WithFS(fsys))
	s, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.FieldByID("TALLA"); !ok {
		t.Fatalf("unexpected schema: %+v", s)
	}
}

func TestStatic(t *testing.T) {
	want := schema.Default()
	s, err := Static(want).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Sections) != len(want.Sections) {
		t.Fatalf("static provider should serve the given schema")
	}
}

func TestNilSourceServesFallback(t *testing.T) {
	s, err := New(nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Empty() {
		t.Fatalf("expected default fallback schema")
	}
}
