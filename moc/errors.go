package moc

import "errors"

var (
	// ErrInvalidContext is returned when no usable context was supplied.
	ErrInvalidContext = errors.New("moc: invalid context")
	// ErrPersistenceLookupFailed wraps failures of the underlying store while looking up entities.
	ErrPersistenceLookupFailed = errors.New("moc: persistence lookup failed")
	// ErrAmbiguousMatch is returned in strict mode when more than one registered entity has the requested id.
	ErrAmbiguousMatch = errors.New("moc: ambiguous match")
	ErrUnknownEntity  = errors.New("moc: unknown entity")
	ErrNotRegistered  = errors.New("moc: entity not registered in context")
)
