package influx

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse reports a body that is not an InfluxQL JSON response.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.StatusCode, e.Body)
}

// StatementError carries an error reported by the server inside an otherwise
// well-formed response.
type StatementError struct {
	Message string
}

func (e *StatementError) Error() string {
	return e.Message
}
