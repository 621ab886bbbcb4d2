// Package clock provides the monotonic wall-clock millisecond source used
// throughout this module (§2.1, §4.7: "Server timestamps are always
// server-side monotonic milliseconds; clients never supply time").
//
// The Clock interface exists so tests can substitute a fake, the same way
// catrate substitutes its package-level timeNow/timeNewTicker vars: here
// the substitution is a value, not a package var, so concurrent tests don't
// race on shared state.
package clock
