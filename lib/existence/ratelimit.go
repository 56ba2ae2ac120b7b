package existence

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/artie-labs/snowflow/lib/config/constants"
	"github.com/artie-labs/snowflow/lib/flow"
)

// RateLimitedChecker throttles the checks of the wrapped checker, parallel prefetches share the same budget.
type RateLimitedChecker struct {
	checker flow.ExistenceChecker
	limiter *rate.Limiter
}

func NewRateLimitedChecker(checker flow.ExistenceChecker, checksPerSecond float64) *RateLimitedChecker {
	return &RateLimitedChecker{
		checker: checker,
		limiter: rate.NewLimiter(rate.Limit(checksPerSecond), 1),
	}
}

func (r *RateLimitedChecker) Exists(ctx context.Context, path flow.ObjectPath, kind constants.NodeKind) (bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	return r.checker.Exists(ctx, path, kind)
}
