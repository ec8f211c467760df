package search

import (
	"errors"
	"fmt"
)

var ErrFetch = errors.New("search request failed")

const (
	FailureStatus  = "http_status"
	FailureNetwork = "network"
	FailureDecode  = "decode"
)

// FetchError is the single failure kind of a search request. Its message is shown to the user as is.
type FetchError struct {
	Kind       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FailureStatus:
		return fmt.Sprintf("Failed to fetch search results (status %d)", e.StatusCode)
	case FailureDecode:
		return fmt.Sprintf("Failed to parse search results: %s", e.Err)
	default:
		if e.Err == nil {
			return ErrFetch.Error()
		}
		return e.Err.Error()
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
