// Package ceremonyerr defines the five typed failure categories every
// handler and the scheduler surface (§7): UNAUTHENTICATED,
// INVALID_ARGUMENT, FAILED_PRECONDITION, NOT_FOUND, and INTERNAL.
//
// Each maps onto the equivalent gRPC status code, since §7's category names
// are, verbatim, gRPC status code names; this lets a transport layer built
// on google.golang.org/grpc return these errors directly, while callers
// that only have a plain error value can still recover the category via
// Code.
package ceremonyerr
