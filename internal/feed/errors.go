package feed

import (
	"errors"
	"fmt"
)

// ErrUnexpectedResponse is returned when the feed answers with a body that is
// not a records listing.
var ErrUnexpectedResponse = errors.New("unexpected feed response")

// UpstreamError represents a non-success status from the station feed
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("station feed returned status %d", e.StatusCode)
}
