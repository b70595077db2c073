package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/storage"
)

// toConnectError maps a classified error to its Connect code.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput, apperr.KindInvalidRequest, apperr.KindInvalidSplitPolicy:
		return connect.CodeInvalidArgument
	case apperr.KindNotFound:
		return connect.CodeNotFound
	case apperr.KindAmbiguousIdentifier:
		return connect.CodeFailedPrecondition
	case apperr.KindUnauthenticated:
		return connect.CodeUnauthenticated
	case apperr.KindAlreadyExists:
		return connect.CodeAlreadyExists
	case apperr.KindStorage:
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}
