package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by services matches at most one of these
// via errors.Is; the HTTP layer maps them to status codes.
var (
	ErrUnauthenticated = errors.New("authorization required")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
)

// Filter compilation errors.
var (
	ErrInvalidFilter            = fmt.Errorf("%w: filter contains invalid field or operator", ErrInvalidInput)
	ErrMultipleInequalityFields = fmt.Errorf("%w: inequality filter is allowed on only one field", ErrInvalidInput)
	ErrInvalidValue             = fmt.Errorf("%w: filter value must be an integer", ErrInvalidInput)
)

// Registration errors.
var (
	ErrAlreadyRegistered = fmt.Errorf("%w: already registered for this conference", ErrConflict)
	ErrSoldOut           = fmt.Errorf("%w: there are no seats available", ErrConflict)
)
