package ceremonyerr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Unauthenticated wraps msg as a §7 UNAUTHENTICATED failure.
func Unauthenticated(msg string) error {
	return status.Error(codes.Unauthenticated, msg)
}

// InvalidArgument wraps a formatted §7 INVALID_ARGUMENT failure.
func InvalidArgument(format string, args ...any) error {
	return status.Error(codes.InvalidArgument, fmt.Sprintf(format, args...))
}

// FailedPrecondition wraps a formatted §7 FAILED_PRECONDITION failure.
func FailedPrecondition(format string, args ...any) error {
	return status.Error(codes.FailedPrecondition, fmt.Sprintf(format, args...))
}

// NotFound wraps a formatted §7 NOT_FOUND failure.
func NotFound(format string, args ...any) error {
	return status.Error(codes.NotFound, fmt.Sprintf(format, args...))
}

// Internal wraps err (a store/batch failure) as a §7 INTERNAL failure.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(codes.Internal, err.Error())
}

// Code returns the gRPC status code of err, or codes.Unknown if err wasn't
// constructed by this package (or a status error at all).
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var st interface{ GRPCStatus() *status.Status }
	if errors.As(err, &st) {
		return st.GRPCStatus().Code()
	}
	return codes.Unknown
}

// Is reports whether err's status code matches code.
func Is(err error, code codes.Code) bool {
	return Code(err) == code
}
