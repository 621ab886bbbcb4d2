// Package model defines the entities that make up a trusted-setup ceremony:
// Ceremony, Circuit, Participant and Timeout, along with the enums and
// collection-path helpers shared by every other package in this module.
//
// These are deliberately thin: every field this module reads or writes, and
// nothing else. A coordinator-owned field these structs don't name is never
// touched, because every write goes through store.Set's merge flag rather
// than a full-document overwrite (see Store.Set in store/store.go).
package model
