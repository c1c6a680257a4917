package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/sells-group/prospector/internal/httperr"
)

// ExhaustedError tags the last error of an operation whose retries ran out.
// It is a distinct kind from the underlying error so callers and logs can
// tell "failed once, not retryable" apart from "kept failing until the
// budget ran out". Unwrap exposes the original error for errors.Is/As.
type ExhaustedError struct {
	Err     error
	Retries int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d retries: %v", e.Retries, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsExhausted reports whether err carries an ExhaustedError anywhere in its
// chain.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}

// DefaultRetryOn is the retryability predicate used when a policy does not
// supply one: HTTP 429 and 500-504 are retryable, every other HTTP status is
// not, and transport-level failures (timeouts, connection resets/refusals,
// DNS) are retryable. Errors of unknown kind are not retried.
func DefaultRetryOn(err error) bool {
	if err == nil {
		return false
	}

	if status := httperr.StatusOf(err); status != 0 {
		return retryableStatus(status)
	}

	return isTransportError(err)
}

func retryableStatus(status int) bool {
	switch status {
	case 429, 500, 501, 502, 503, 504:
		return true
	default:
		return false
	}
}

// isTransportError distinguishes connection-level failures from decoding or
// application errors.
func isTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE)
}
