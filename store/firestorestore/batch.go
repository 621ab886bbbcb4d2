package firestorestore

import (
	"context"

	"cloud.google.com/go/firestore"

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

// batch implements store.Batch as a deferred firestore.Transaction, see
// doc.go for why a transaction is used instead of firestore.WriteBatch.
type batch struct {
	client *firestore.Client
	ops    []writeOp
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
	return b.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		refs := make(map[string]*firestore.DocumentRef, len(b.ops))
		for _, op := range b.ops {
			refs[op.path] = b.client.Doc(op.path)
		}

		for _, op := range b.ops {
			switch op.kind {
			case opCreate:
				if _, err := tx.Get(refs[op.path]); err == nil {
					return store.ErrPreconditionFailed
				}

			case opSetIfUnchanged:
				snap, err := tx.Get(refs[op.path])
				if err != nil {
					return store.ErrNotFound
				}
				actual, _ := snap.DataAt("lastUpdated")
				if !lastUpdatedMatches(actual, op.expectLastUpdated) {
					return store.ErrPreconditionFailed
				}
			}
		}

		for _, op := range b.ops {
			ref := refs[op.path]
			switch op.kind {
			case opCreate:
				if err := tx.Create(ref, op.fields); err != nil {
					return err
				}
			case opSet:
				var opts []firestore.SetOption
				if op.merge {
					opts = append(opts, firestore.MergeAll)
				}
				if err := tx.Set(ref, op.fields, opts...); err != nil {
					return err
				}
			case opSetIfUnchanged:
				if err := tx.Set(ref, op.fields, firestore.MergeAll); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func lastUpdatedMatches(actual any, expect int64) bool {
	switch n := actual.(type) {
	case int64:
		return n == expect
	case int:
		return int64(n) == expect
	case float64:
		return int64(n) == expect
	default:
		return false
	}
}
