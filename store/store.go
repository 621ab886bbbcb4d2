package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get (and surfaced by Batch.Commit for a failed
// precondition) when the requested document does not exist.
var ErrNotFound = errors.New("store: document not found")

// ErrPreconditionFailed is returned by Batch.Commit when a conditional
// write's precondition didn't hold (e.g. an optimistic lastUpdated check).
var ErrPreconditionFailed = errors.New("store: precondition failed")

type (
	// Document is one stored property bag, keyed by its full path.
	Document struct {
		Path   string
		Fields map[string]any
	}

	// Op is the equality/range comparator supported by Query, modeled after
	// the subset of Firestore's query operators this module actually needs.
	Op string

	// Filter is one equality-or-range constraint on a single field, applied
	// by Query.
	Filter struct {
		Field string
		Op    Op
		Value any
	}

	// Store is the minimal document database this module depends on.
	// Implementations: store/memstore (in-memory, for tests) and
	// store/firestorestore (production, backed by Cloud Firestore).
	Store interface {
		// Get reads one document by path, returning ErrNotFound if it
		// doesn't exist.
		Get(ctx context.Context, path string) (Document, error)

		// Set creates or overwrites (or, if merge is true, merges into) the
		// document at path.
		Set(ctx context.Context, path string, fields map[string]any, merge bool) error

		// Query returns every document in collection matching all filters.
		Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)

		// Batch starts a new atomic batch of writes.
		Batch() Batch
	}

	// Batch accumulates conditional creates/updates, committed atomically
	// by Commit. Per §4.1, every multi-document mutation in this module
	// goes through exactly one Batch.
	Batch interface {
		// Create adds a document that must not already exist.
		Create(path string, fields map[string]any)

		// Set adds a document write (create-or-overwrite, or merge if
		// merge is true).
		Set(path string, fields map[string]any, merge bool)

		// SetIfUnchanged adds a merge-write that's conditional on the
		// document's current "lastUpdated" field still equalling
		// expectLastUpdated — the optimistic guard described in §5 and
		// supplemented in SPEC_FULL.md. If the precondition fails, Commit
		// returns ErrPreconditionFailed and none of the batch's writes are
		// applied.
		SetIfUnchanged(path string, fields map[string]any, expectLastUpdated int64)

		// Commit applies every accumulated write as a single transaction.
		// On any error, no writes are applied.
		Commit(ctx context.Context) error
	}
)

const (
	OpEqual          Op = "=="
	OpGreaterOrEqual Op = ">="
	OpLessOrEqual    Op = "<="
)
