package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/datalab/go-crf/pkg/schema"
)

const defaultTimeout = 10 * time.Second

// Option customises a Provider.
type Option func(*Provider)

// WithHTTPClient injects the HTTP client used for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithFS supplies the fs.FS consulted for FS sources.
func WithFS(fsys fs.FS) Option {
	return func(p *Provider) {
		p.fsys = fsys
	}
}

// WithFallback overrides the schema returned when the source is unreachable.
func WithFallback(s schema.Schema) Option {
	return func(p *Provider) {
		p.fallback = s
	}
}

// WithTimeout bounds each remote fetch.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger attaches a logger; the provider is silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provider) {
		p.log = logger
	}
}

// Provider loads the schema from a configured source and caches the first
// successful result for the remainder of the session. The cached schema is
// treated as immutable; Invalidate forces the next Load to refetch so that
// variable-editing flows can push structural changes through.
type Provider struct {
	src      Source
	client   *http.Client
	fsys     fs.FS
	fallback schema.Schema
	timeout  time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	cached *schema.Schema
}

// New constructs a Provider for the given source.
func New(src Source, options ...Option) *Provider {
	p := &Provider{
		src:      src,
		client:   &http.Client{},
		fallback: schema.Default(),
		timeout:  defaultTimeout,
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Static returns a Provider that always serves the given schema. Useful for
// tests and for embedding a fixed instrument.
func Static(s schema.Schema) *Provider {
	p := New(nil)
	p.cached = &s
	return p
}

// Load returns the session schema. The first successful fetch is cached;
// fetch or decode failures fall back to the built-in default schema and are
// non-fatal by design.
func (p *Provider) Load(ctx context.Context) (schema.Schema, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return *p.cached, nil
	}
	if p.src == nil {
		p.cached = &p.fallback
		return p.fallback, nil
	}

	loaded, err := p.fetch(ctx)
	if err != nil {
		p.log.Warn().Err(err).Str("source", p.src.Location()).
			Msg("schema source unreachable, using fallback")
		return p.fallback, nil
	}
	if loaded.Empty() {
		p.log.Warn().Str("source", p.src.Location()).
			Msg("schema source returned no fields, using fallback")
		return p.fallback, nil
	}

	p.cached = &loaded
	return loaded, nil
}

// Invalidate drops the cached schema so the next Load refetches. Call it
// after creating or deleting variables.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

func (p *Provider) fetch(ctx context.Context) (schema.Schema, error) {
	raw, err := p.read(ctx)
	if err != nil {
		return schema.Schema{}, err
	}

	// URL sources speak the variables-endpoint row format; documents on
	// disk use the section/field shape.
	if p.src.Kind() == KindURL {
		rows, err := schema.DecodeRows(raw)
		if err != nil {
			return schema.Schema{}, err
		}
		return schema.FromRows(rows), nil
	}
	return schema.DecodeDocument(raw)
}

func (p *Provider) read(ctx context.Context) ([]byte, error) {
	switch p.src.Kind() {
	case KindURL:
		return p.readURL(ctx)
	case KindFile:
		return os.ReadFile(p.src.Location())
	case KindFS:
		if p.fsys == nil {
			return nil, errors.New("source: fs source configured without an fs.FS")
		}
		return fs.ReadFile(p.fsys, p.src.Location())
	default:
		return nil, fmt.Errorf("source: unsupported kind %q", p.src.Kind())
	}
}

func (p *Provider) readURL(ctx context.Context) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.src.Location(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
