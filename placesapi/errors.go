package placesapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformed is returned when an argument has the wrong shape or type:
	// a non-sequence container level, a short leaf, an unknown geometry type,
	// an invalid handle or a non-string record_id.
	ErrMalformed = errors.New("malformed input")

	// ErrOutOfBounds is matched by every *BoundsError.
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	errUnknownEndpoint = errors.New("no such endpoint")
)

// BoundsError reports a coordinate pair failing the latitude/longitude test.
type BoundsError struct {
	Pair Pair
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("coordinates out of bounds: lat=%v lon=%v", e.Pair.Lat(), e.Pair.Lon())
}

func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// APIError is returned when the service answers with a status outside 2xx/3xx.
type APIError struct {
	Code        int
	Body        []byte
	Header      http.Header
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (#%d) %s", e.Body, e.Code, e.Description)
}

// DecodeError means the body handed back by the service is not valid JSON.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Could not decode JSON from server. %v content: %s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
