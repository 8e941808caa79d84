package history

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks recoverable store failures: lock timeouts and
// corrupt or unreadable database files. Handlers treat it as a signal to
// fail open rather than block the host's queue processing.
var ErrUnavailable = errors.New("history store unavailable")

// ErrInvalidTransition is returned when an update would violate the
// pending-to-terminal lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

func unavailable(operation string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, operation, err)
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, operation)
}
