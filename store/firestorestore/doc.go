// Package firestorestore is the production store.Store, backed by Cloud
// Firestore (cloud.google.com/go/firestore). The spec's store abstraction
// (§4.1: point reads, equality/range queries on one field, an atomic batch
// of conditional writes) is, almost field for field, the Firestore client
// API; this package is a thin adapter rather than a reimplementation.
//
// Batch.SetIfUnchanged needs a read-then-write precondition Firestore's
// WriteBatch can't express (it only supports LastUpdateTime/Exists
// preconditions), so Batch.Commit here runs as a
// firestore.Client.RunTransaction instead of a firestore.WriteBatch: a
// transaction can read documents to check the application-level
// "lastUpdated" field before deciding whether to write them, and Firestore
// retries the transaction on contention automatically.
package firestorestore
