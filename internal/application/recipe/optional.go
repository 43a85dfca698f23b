package recipe

import (
	"context"

	"go.uber.org/zap"
)

// optional holds the outcome of one best-effort enrichment call
type optional[T any] struct {
	value T
	ok    bool
}

func some[T any](v T) optional[T] {
	return optional[T]{value: v, ok: true}
}

// Get returns the value and whether it is present
func (o optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// attempt runs fn under the per-call timeout. Any error yields an absent
// value; the failure is logged and counted.
func attempt[T any](
	ctx context.Context,
	s *FinderService,
	field string,
	logger *zap.Logger,
	fn func(ctx context.Context) (T, error),
) optional[T] {
	if s.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.CallTimeout)
		defer cancel()
	}

	v, err := fn(ctx)
	if err != nil {
		logger.Warn("Enrichment call failed",
			zap.String("field", field),
			zap.Error(err),
		)
		s.metrics.EnrichmentFailed(field)
		return optional[T]{}
	}
	return some(v)
}
