package session

import (
	"errors"

	"github.com/phambaophuc/ecovision/internal/models"
)

var (
	ErrDecodeFailure     = errors.New("failed to encode image file")
	ErrNetworkFailure    = errors.New("identification request failed")
	ErrMalformedResponse = errors.New("malformed identification response")
	ErrSuperseded        = errors.New("superseded by a newer submit")
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RequestState is the lifecycle of the latest identification. Result is
// set only when Status is StatusSucceeded, Err only when it is StatusFailed.
type RequestState struct {
	Status Status
	Result models.IdentificationResult
	Err    error
}

func Idle() RequestState    { return RequestState{Status: StatusIdle} }
func Loading() RequestState { return RequestState{Status: StatusLoading} }

func Succeeded(result models.IdentificationResult) RequestState {
	return RequestState{Status: StatusSucceeded, Result: result}
}

func Failed(err error) RequestState {
	return RequestState{Status: StatusFailed, Err: err}
}

// Terminal reports whether the state ends a submit.
func (s RequestState) Terminal() bool {
	return s.Status == StatusSucceeded || s.Status == StatusFailed
}
