// Package fsm implements the pure participant lifecycle rules of §4.3:
// the CONTRIBUTING sub-step chain (DOWNLOADING -> COMPUTING -> UPLOADING ->
// VERIFYING -> COMPLETED) and the guard predicates each call handler checks
// before mutating a Participant.
//
// Nothing in this package touches a store; every function takes the
// already-loaded model values it needs and returns either the next value
// or a typed error, so service and scheduler can share exactly one
// definition of "is this transition legal".
package fsm
