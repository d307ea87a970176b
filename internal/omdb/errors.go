package omdb

import (
	"errors"
	"fmt"
)

// User-facing messages. They reach the screen verbatim through Rejected.
var (
	// ErrInvalidTerm reports a term that is not valid UTF-8 text
	ErrInvalidTerm = errors.New("Unexpected input provided")
	// ErrTooManyResults is what OMDb answers for very short terms; it is
	// returned without a request when the term is below MinTermLength
	ErrTooManyResults = errors.New("Too many results.")
)

// FallbackMessage is used when OMDb reports a failure without an Error field
const FallbackMessage = "Unexpected Error. Please try again later"

// APIError is a Response:"False" answer from OMDb
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e == nil || e.Message == "" {
		return FallbackMessage
	}
	return e.Message
}

// HTTPStatusError is a non-2xx answer; StatusCode is kept for errors.As callers
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	if e.Status != "" {
		return fmt.Sprintf("search request failed: HTTP %s", e.Status)
	}
	return fmt.Sprintf("search request failed: HTTP %d", e.StatusCode)
}
