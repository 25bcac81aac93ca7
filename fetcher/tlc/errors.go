package tlc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// errOutOfRange is returned for months the publisher cannot have released.
var errOutOfRange = errors.New("month is outside the published range")

// statusError is a non-200 HTTP answer.
type statusError struct {
	URL        string
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// notFound reports answers meaning the file is not published. CloudFront
// answers 403 for missing objects.
func (e *statusError) notFound() bool {
	switch e.StatusCode {
	case http.StatusNotFound, http.StatusForbidden, http.StatusGone:
		return true
	}
	return false
}

// isTransient decides which download errors are worth retrying: transport
// failures including client timeouts, 5xx and 429. Cancellation and missing
// files are not. A timeout caused by the caller's own deadline still stops
// the retry loop, since RetryConfig.Do checks ctx first.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return true
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.notFound()
}
