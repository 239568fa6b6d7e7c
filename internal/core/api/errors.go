package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/prospector/internal/types"
)

// statusError maps domain errors to gRPC codes. Status errors pass through
// unchanged. Anything unrecognised is a storage failure.
func statusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Unavailable
	switch {
	case errors.Is(err, types.ErrInvalidRule),
		errors.Is(err, types.ErrInvalidOperator),
		errors.Is(err, types.ErrUnknownEntityType),
		errors.Is(err, types.ErrPresetNameRequired),
		errors.Is(err, types.ErrUnsupportedFormat),
		errors.Is(err, types.ErrEmptyImport):
		code = codes.InvalidArgument
	case errors.Is(err, types.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, types.ErrTooManyRecords):
		code = codes.ResourceExhausted
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	return status.Error(code, err.Error())
}
