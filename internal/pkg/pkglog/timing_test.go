package pkglog

import (
	"context"
	"errors"
	"testing"
)

func timingRecords(t *testing.T, sink *memorySink, event string) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, rec := range sink.records(t) {
		extra, _ := rec["extra_fields"].(map[string]any)
		if extra != nil && extra["event"] == event {
			out = append(out, rec)
		}
	}

	return out
}

func TestTimeOperationSuccess(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	result, err := TimeOperationResult(context.Background(), logger, "score_transaction", func(ctx context.Context) (int, error) {
		return 99, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 99 {
		t.Fatalf("expected result passthrough, got %d", result)
	}

	started := timingRecords(t, sink, string(EventOperationStarted))
	completed := timingRecords(t, sink, string(EventOperationCompleted))
	if len(started) != 1 || len(completed) != 1 {
		t.Fatalf("expected 1 started and 1 completed record, got %d/%d", len(started), len(completed))
	}

	extra := completed[0]["extra_fields"].(map[string]any)
	if extra["duration_ms"].(float64) < 0 {
		t.Fatalf("expected non-negative duration, got %v", extra["duration_ms"])
	}
	if extra["operation"] != "score_transaction" || extra["status"] != "success" {
		t.Fatalf("unexpected completion fields: %v", extra)
	}
}

func TestTimeOperationFailure(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	sentinel := errors.New("rule engine exploded")
	err := TimeOperation(context.Background(), logger, "evaluate_rules", func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected original error returned unchanged, got %v", err)
	}

	failed := timingRecords(t, sink, string(EventOperationFailed))
	if len(failed) != 1 {
		t.Fatalf("expected exactly 1 failure record, got %d", len(failed))
	}
	if failed[0]["level"] != "ERROR" {
		t.Fatalf("expected ERROR failure record, got %v", failed[0]["level"])
	}

	extra := failed[0]["extra_fields"].(map[string]any)
	if extra["duration_ms"].(float64) < 0 {
		t.Fatalf("expected non-negative duration, got %v", extra["duration_ms"])
	}
	if extra["error"] != "rule engine exploded" {
		t.Fatalf("expected failure description, got %v", extra["error"])
	}
}

func TestTimeOperationCancelled(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := TimeOperation(ctx, logger, "long_call", func(ctx context.Context) error {
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	failed := timingRecords(t, sink, string(EventOperationFailed))
	if len(failed) != 1 {
		t.Fatalf("expected a failure record for cancellation, got %d", len(failed))
	}
	if failed[0]["extra_fields"].(map[string]any)["cancelled"] != true {
		t.Fatal("expected cancelled marker on failure record")
	}
}

func TestLogExecutionTimeComposes(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	inner := LogExecutionTime(logger, "inner", func(ctx context.Context) error {
		return nil
	})
	outer := LogExecutionTime(logger, "outer", inner)

	if err := outer(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	started := timingRecords(t, sink, string(EventOperationStarted))
	completed := timingRecords(t, sink, string(EventOperationCompleted))
	if len(started) != 2 || len(completed) != 2 {
		t.Fatalf("expected 2 started and 2 completed records, got %d/%d", len(started), len(completed))
	}
}
