package grpc

import (
	"errors"

	"github.com/modlrn/go-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errUnknownService = errors.New("unknown service")

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, errUnknownService):
		return status.Error(codes.NotFound, errUnknownService.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}
