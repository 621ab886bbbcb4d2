// Package logging wires github.com/joeycumines/logiface to
// github.com/joeycumines/izerolog (backed by github.com/rs/zerolog),
// following the teacher pack's own composition in
// logiface-zerolog/zerolog.go. Every package that needs to log takes a
// *logiface.Logger[*izerolog.Event] (*logging.Logger) rather than reaching
// for a global.
package logging
