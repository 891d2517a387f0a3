package match

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/orneryd/sleipnir/pkg/metrics"
)

// Sentinel errors for the match package.
var (
	// ErrInvariant reports a call that violates an internal invariant of the
	// expansion machinery, such as mutating a read-only binding view.
	ErrInvariant = errors.New("internal invariant violated")
)

// invariant logs the violation loudly, bumps the counter, and returns an
// error wrapping ErrInvariant. Callers that cannot return an error use the
// error's message for context only.
func invariant(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	slog.Error("invariant violated (this should not happen)", "detail", msg)
	metrics.InvariantViolations.Inc()
	return fmt.Errorf("%w: %s", ErrInvariant, msg)
}
