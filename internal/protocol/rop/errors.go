package rop

import (
	"context"
	"errors"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/pkg/store"
)

var codeToReturnValue = map[store.ErrorCode]ReturnValue{
	store.ErrGeneric:          EcError,
	store.ErrNotFound:         EcNotFound,
	store.ErrNotSupported:     EcNotSupported,
	store.ErrInvalidParameter: EcInvalidParam,
	store.ErrAccessDenied:     EcAccessDenied,
	store.ErrRPCFormat:        EcRPCFormat,
	store.ErrNotImplemented:   EcNotImplemented,
	store.ErrUnknownUser:      EcUnknownUser,
	store.ErrLoginPermission:  EcLoginPerm,
	store.ErrWrongServer:      EcWrongServer,
	store.ErrServerPaused:     EcServerPaused,
	store.ErrIOError:          EcError,
}

// MapErrorToReturnValue translates a service error into a ROP return value.
//
// Caller mistakes are logged at debug level. Backend failures and
// unexpected errors are logged as errors and reported as ecError.
func MapErrorToReturnValue(err error, operation string) ReturnValue {
	if err == nil {
		return EcNone
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Debug("%s aborted: %v", operation, err)
		return EcError
	}

	code, _ := store.CodeOf(err)
	if code == store.ErrIOError {
		logger.Error("%s failed: %v", operation, err)
		return EcError
	}

	logger.Debug("%s failed: %v", operation, err)
	if rv, ok := codeToReturnValue[code]; ok {
		return rv
	}
	return EcError
}
