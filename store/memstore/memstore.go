package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/joeycumines/go-ceremony/store"
)

type (
	// Store is an in-memory store.Store.
	Store struct {
		reqCh  chan request
		ctx    context.Context
		cancel context.CancelFunc
		done   chan struct{}
	}

	request struct {
		fn   func(s *state)
		done chan struct{}
	}

	state struct {
		docs map[string]map[string]any
	}
)

// New starts the owning goroutine and returns a ready Store.
func New() *Store {
	x := &Store{
		reqCh: make(chan request),
		done:  make(chan struct{}),
	}
	x.ctx, x.cancel = context.WithCancel(context.Background())
	go x.run()
	return x
}

// Close stops the owning goroutine. Safe to call multiple times.
func (x *Store) Close() {
	x.cancel()
	<-x.done
}

func (x *Store) run() {
	defer close(x.done)

	s := &state{docs: make(map[string]map[string]any)}

	for {
		select {
		case <-x.ctx.Done():
			return

		case r := <-x.reqCh:
			r.fn(s)
			close(r.done)
		}
	}
}

// exec runs fn against the owned state, on the owning goroutine, blocking
// until it completes or ctx/the store itself is canceled.
func (x *Store) exec(ctx context.Context, fn func(s *state)) error {
	r := request{fn: fn, done: make(chan struct{})}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-x.ctx.Done():
		return x.ctx.Err()
	case x.reqCh <- r:
	}
	select {
	case <-r.done:
		return nil
	case <-x.ctx.Done():
		return x.ctx.Err()
	}
}

func (x *Store) Get(ctx context.Context, path string) (store.Document, error) {
	var doc store.Document
	var found bool
	err := x.exec(ctx, func(s *state) {
		fields, ok := s.docs[path]
		if !ok {
			return
		}
		found = true
		doc = store.Document{Path: path, Fields: cloneFields(fields)}
	})
	if err != nil {
		return store.Document{}, err
	}
	if !found {
		return store.Document{}, store.ErrNotFound
	}
	return doc, nil
}

func (x *Store) Set(ctx context.Context, path string, fields map[string]any, merge bool) error {
	return x.exec(ctx, func(s *state) {
		applySet(s, path, fields, merge)
	})
}

func (x *Store) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Document, error) {
	var out []store.Document
	err := x.exec(ctx, func(s *state) {
		for path, fields := range s.docs {
			if parentCollection(path) != collection {
				continue
			}
			if matchesAll(fields, filters) {
				out = append(out, store.Document{Path: path, Fields: cloneFields(fields)})
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (x *Store) Batch() store.Batch {
	return &batch{s: x}
}

// applySet implements Store.Set against the owned state directly, shared
// with batch commits.
func applySet(s *state, path string, fields map[string]any, merge bool) {
	if !merge || s.docs[path] == nil {
		if merge {
			// merge against a document that doesn't exist yet behaves like
			// a create.
			s.docs[path] = cloneFields(fields)
			return
		}
		s.docs[path] = cloneFields(fields)
		return
	}
	for k, v := range fields {
		s.docs[path][k] = v
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func parentCollection(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func matchesAll(fields map[string]any, filters []store.Filter) bool {
	for _, f := range filters {
		if !matches(fields[f.Field], f) {
			return false
		}
	}
	return true
}

func matches(actual any, f store.Filter) bool {
	af, aok := toFloat(actual)
	vf, vok := toFloat(f.Value)
	switch f.Op {
	case store.OpEqual, "":
		return fmt.Sprint(actual) == fmt.Sprint(f.Value)
	case store.OpGreaterOrEqual:
		return aok && vok && af >= vf
	case store.OpLessOrEqual:
		return aok && vok && af <= vf
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
