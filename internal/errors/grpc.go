package errors

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HandleError converts domain errors to gRPC status for client responses.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return status.Error(appErr.Code.GRPCCode(), appErr.Message)
	}

	// Unknown error - return internal with generic message
	return status.Error(codes.Internal, "an unexpected error occurred")
}

// ExitCode maps an error to a CLI process exit code: 2 for caller mistakes
// (invalid input, unknown records, refused preconditions), 1 for internal
// failures, 0 for nil. Scripts can branch on it without parsing stderr.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	st, _ := status.FromError(HandleError(err))
	switch st.Code() {
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
		return 2
	}
	return 1
}
