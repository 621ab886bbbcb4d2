// Package scheduler implements the eviction scheduler of §4.6: the
// once-per-minute control loop that scans every OPENED ceremony's
// circuits, classifies the current contributor as blocked or not, and, if
// blocked, evicts them - rotating the queue and recording a Timeout.
//
// The loop itself follows the same injectable-ticker shape as
// catrate.Limiter.worker: a clock.Ticker (real or fake) drives the tick,
// so tests can assert eviction behavior at an exact, controlled instant
// instead of racing a real timer.
package scheduler
