package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"evidence-service/internal/domain/analysis"
	"evidence-service/internal/metrics"
)

// outcome is the result of one dependency call. Callers pick their own default
// with or, so a dependency error never reaches the assembled result.
type outcome[T any] struct {
	value T
	err   error
}

func (o outcome[T]) or(fallback func(error) T) T {
	if o.err != nil {
		return fallback(o.err)
	}
	return o.value
}

func (o outcome[T]) unwrap() (T, error) {
	return o.value, o.err
}

// call runs fn under its own timeout, records metrics and logs the failure.
// Disabled dependencies are logged at debug level only.
func call[T any](ctx context.Context, log zerolog.Logger, dependency string, timeout time.Duration, fn func(context.Context) (T, error)) outcome[T] {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	v, err := fn(ctx)
	elapsed := time.Since(start)

	if err == nil {
		metrics.ObserveDependency(dependency, "ok", elapsed)
		return outcome[T]{value: v}
	}

	kind := analysis.KindOf(err)
	metrics.ObserveDependency(dependency, string(kind), elapsed)
	if kind == analysis.FailureDisabled {
		log.Debug().Str("dependency", dependency).Msg("dependency not configured, using default")
	} else {
		log.Error().
			Err(err).
			Str("dependency", dependency).
			Str("failure", string(kind)).
			Dur("elapsed", elapsed).
			Msg("dependency call failed")
	}
	return outcome[T]{value: v, err: err}
}
