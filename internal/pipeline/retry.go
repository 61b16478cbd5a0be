package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/clausecheck/internal/ai"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *ai.RetryableError
	return errors.As(err, &retryErr)
}

// MaxRetries bounds the attempts made for one model call.
const MaxRetries = 3

// backoffUnit and backoffCap scale Backoff. Tests shrink them.
var (
	backoffUnit = time.Second
	backoffCap  = 30 * time.Second
)

// Backoff returns the wait before retry attempt n (0-indexed): exponential in
// n, capped, plus up to 50% jitter.
func Backoff(attempt int) time.Duration {
	base := backoffUnit << uint(attempt)
	if base > backoffCap || base <= 0 {
		base = backoffCap
	}
	if half := int64(base) / 2; half > 0 {
		return base + time.Duration(rand.Int64N(half))
	}
	return base
}
