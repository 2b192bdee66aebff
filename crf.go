// Package crf is the convenience surface of the case report form engine: it
// re-exports the session entry points so most callers can open a capture
// session, fill it, and finalize it without importing the inner packages.
package crf

import (
	"context"

	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/schema/source"
	"github.com/datalab/go-crf/pkg/session"
)

// Options configures a capture session; alias exported via the root package
// for convenience.
type Options = session.Options

// Session is one open form over a schema.
type Session = session.Session

// Group selects the participant arm a form renders for.
type Group = schema.Group

const (
	GroupCase    = schema.GroupCase
	GroupControl = schema.GroupControl
)

// Open exposes the session constructor from the top-level module.
func Open(ctx context.Context, opts Options) (*Session, error) {
	return session.Open(ctx, opts)
}

// LoadSchema resolves the form schema from a configured source, falling back
// to the built-in instrument when the source is unreachable.
func LoadSchema(ctx context.Context, src source.Source, options ...source.Option) (schema.Schema, error) {
	return source.New(src, options...).Load(ctx)
}

// DefaultSchema returns the built-in fallback instrument.
func DefaultSchema() schema.Schema {
	return schema.Default()
}
