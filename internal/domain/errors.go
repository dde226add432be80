package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable means the search engine could not be reached.
	ErrEngineUnavailable = errors.New("search engine unavailable")
	// ErrEngineRejected means the engine answered with an error status.
	ErrEngineRejected = errors.New("search engine rejected request")
	// ErrEmptyResult means a well-formed request matched nothing.
	ErrEmptyResult = errors.New("empty result")

	ErrUnknownAggKind = errors.New("unknown aggregation kind")
	ErrUnknownRangeOp = errors.New("unknown range operator")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownReport  = errors.New("unknown report")
)

// RejectedError carries the engine's status and reason. It matches
// ErrEngineRejected under errors.Is.
type RejectedError struct {
	Status int
	Type   string
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: status %d: %s", ErrEngineRejected, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s: status %d: %s: %s", ErrEngineRejected, e.Status, e.Type, e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return ErrEngineRejected
}
