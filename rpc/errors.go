package rpc

import (
	"context"
	"errors"

	"github.com/spooky-finn/cryptobridge/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps router errors onto grpc status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrUnknownProvider):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		log.WithError(err).Error("unexpected error")
		return status.Error(codes.Internal, "internal error")
	}
}
