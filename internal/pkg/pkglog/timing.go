package pkglog

import (
	"context"
	"errors"
	"time"
)

// TimeOperation runs fn and emits started/completed/failed records around it,
// including the elapsed duration in milliseconds measured on the monotonic
// clock. The error from fn is returned unchanged: the wrapper is transparent
// to business error semantics. A cancelled operation still produces a failure
// record with the elapsed time observed so far.
func TimeOperation(ctx context.Context, logger *Logger, operation string, fn func(ctx context.Context) error) error {
	logger.log(ctx, LevelInfo, operation+" started", []any{
		"event", EventOperationStarted,
		"operation", operation,
	}, 2)

	start := time.Now()
	err := fn(ctx)
	durationMS := float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		kvs := []any{
			"event", EventOperationFailed,
			"operation", operation,
			"duration_ms", durationMS,
			"status", "error",
			"error", err.Error(),
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kvs = append(kvs, "cancelled", true)
		}
		logger.log(ctx, LevelError, operation+" failed", kvs, 2)

		return err
	}

	logger.log(ctx, LevelInfo, operation+" completed", []any{
		"event", EventOperationCompleted,
		"operation", operation,
		"duration_ms", durationMS,
		"status", "success",
	}, 2)

	return nil
}

// TimeOperationResult is TimeOperation for operations that return a value.
// The result and error pass through unchanged.
func TimeOperationResult[T any](ctx context.Context, logger *Logger, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := TimeOperation(ctx, logger, operation, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})

	return result, err
}

// LogExecutionTime wraps fn so every invocation is timed and logged. Wrapping
// an already-wrapped operation nests cleanly: each layer emits its own records
// and measures only its own span.
func LogExecutionTime(logger *Logger, operation string, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return TimeOperation(ctx, logger, operation, fn)
	}
}
