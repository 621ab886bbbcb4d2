// Package store defines the minimal document-store abstraction this module
// depends on (§4.1): point reads, collection queries filtered by equality
// or range on one field, and an atomic batch of conditional creates/updates
// committed as a single transaction.
//
// All multi-document writes in this module go through a Batch; partial
// writes are disallowed, matching §4.1's "All core mutations that touch
// more than one document MUST go through a batch."
package store
