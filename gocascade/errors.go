package gocascade

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrExhausted       = errors.New("no valid successor within search bound")
	ErrBadParam        = errors.New("bad cascade param")
	ErrBadEncoding     = errors.New("bad sequence encoding")
	ErrParse           = errors.New("sequence parse failed")
	ErrNotFound        = errors.New("not found")
	ErrCatalogVersion  = errors.New("catalog version is incompatible")
	ErrReadOnly        = errors.New("catalog is in read-only mode")
	ErrClosed          = errors.New("catalog is closed")
	ErrVerifyFailed    = errors.New("sequence verification failed")
)

// ExhaustionError reports that the generator scanned every candidate up to Bound without finding
// an unused value forming a valid triple with Previous at Position.
//
// This is always a defect in the constraint parameters or the predicate; it is never retried.
type ExhaustionError struct {
	Position int
	Previous int
	Bound    int
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("%v: position %d, previous term %d, searched 1..%d", ErrExhausted, e.Position, e.Previous, e.Bound)
}

func (e *ExhaustionError) Unwrap() error {
	return ErrExhausted
}
