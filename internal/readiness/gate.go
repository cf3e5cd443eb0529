package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"
)

// Wait blocks until probe succeeds, polling every interval. With maxAttempts
// zero it polls until ctx is cancelled; the enclosing job deadline is the
// cancellation mechanism. A positive maxAttempts bounds the number of probes.
func Wait(ctx context.Context, log *logrus.Logger, probe func(ctx context.Context) bool, interval time.Duration, maxAttempts int) error {
	attempts := 0

	err := wait.PollUntilContextCancel(ctx, interval, true, func(ctx context.Context) (bool, error) {
		attempts++
		if probe(ctx) {
			return true, nil
		}
		if maxAttempts > 0 && attempts >= maxAttempts {
			return false, fmt.Errorf("service not ready after %d attempts", attempts)
		}
		log.Debugf("Service not ready yet, retrying in %s (attempt %d)", interval, attempts)
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("waiting for service readiness: %w", err)
	}
	return nil
}
