package core

import "errors"

// Common errors.
var (
	ErrUnknownKind        = errors.New("unknown kind")
	ErrReservedAttribute  = errors.New("reserved attribute")
	ErrInvalidValue       = errors.New("invalid value")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrInvalidTimestamp   = errors.New("invalid timestamp")
	ErrNotFound           = errors.New("no instance found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
