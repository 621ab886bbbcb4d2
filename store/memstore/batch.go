package memstore

import (
	"context"

	"github.com/joeycumines/go-ceremony/store"
)

type opKind int

const (
	opCreate opKind = iota
	opSet
	opSetIfUnchanged
)

type writeOp struct {
	kind              opKind
	path              string
	fields            map[string]any
	merge             bool
	expectLastUpdated int64
}

// batch implements store.Batch. Because Store.exec already runs its
// closure on the single owning goroutine, a batch's precondition checks
// and writes both happen inside one such closure, making the whole batch
// atomic for free - no separate locking is required.
type batch struct {
	s   *Store
	ops []writeOp
}

func (b *batch) Create(path string, fields map[string]any) {
	b.ops = append(b.ops, writeOp{kind: opCreate, path: path, fields: fields})
}

func (b *batch) Set(path string, fields map[string]any, merge bool) {
	b.ops = append(b.ops, writeOp{kind: opSet, path: path, fields: fields, merge: merge})
}

func (b *batch) SetIfUnchanged(path string, fields map[string]any, expectLastUpdated int64) {
	b.ops = append(b.ops, writeOp{kind: opSetIfUnchanged, path: path, fields: fields, expectLastUpdated: expectLastUpdated})
}

func (b *batch) Commit(ctx context.Context) error {
	var commitErr error
	err := b.s.exec(ctx, func(s *state) {
		for _, op := range b.ops {
			switch op.kind {
			case opCreate:
				if _, exists := s.docs[op.path]; exists {
					commitErr = store.ErrPreconditionFailed
					return
				}
			case opSetIfUnchanged:
				current, exists := s.docs[op.path]
				if !exists {
					commitErr = store.ErrNotFound
					return
				}
				actual, _ := toFloat(current["lastUpdated"])
				if int64(actual) != op.expectLastUpdated {
					commitErr = store.ErrPreconditionFailed
					return
				}
			}
		}

		for _, op := range b.ops {
			switch op.kind {
			case opCreate:
				s.docs[op.path] = cloneFields(op.fields)
			case opSet:
				applySet(s, op.path, op.fields, op.merge)
			case opSetIfUnchanged:
				applySet(s, op.path, op.fields, true)
			}
		}
	})
	if err != nil {
		return err
	}
	return commitErr
}
