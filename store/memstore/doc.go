// Package memstore is an in-memory store.Store, for tests and local
// development. A single goroutine owns the document map and processes
// requests sent over a channel - the same single-owner-goroutine shape as
// microbatch.Batcher.run, adapted here to own a map instead of a pending
// job batch, so every read, write, query and batch commit is naturally
// serialized without a shared mutex.
package memstore
