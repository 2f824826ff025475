package pkglog

import (
	"context"
	"log/slog"
	"testing"
)

func newSlogUnderTest(min Level) (*slog.Logger, *memorySink) {
	logger, sink := newTestLogger(min, nil)
	return slog.New(&slogHandler{logger: logger}), sink
}

func TestSlogHandlerMapsLevels(t *testing.T) {
	sl, sink := newSlogUnderTest(LevelDebug)

	ctx := context.Background()
	sl.DebugContext(ctx, "d")
	sl.InfoContext(ctx, "i")
	sl.WarnContext(ctx, "w")
	sl.ErrorContext(ctx, "e")

	recs := sink.records(t)
	want := []string{"DEBUG", "INFO", "WARNING", "ERROR"}
	if len(recs) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(recs))
	}
	for i, level := range want {
		if recs[i]["level"] != level {
			t.Errorf("record %d: level = %v, want %s", i, recs[i]["level"], level)
		}
	}
}

func TestSlogHandlerCarriesAttrsAndScope(t *testing.T) {
	sl, sink := newSlogUnderTest(LevelDebug)

	ctx := OpenScope(context.Background(), Fields{"correlation_id": "cid-77"})
	sl.InfoContext(ctx, "shutting down", "timeout_ms", 5000)

	rec := sink.records(t)[0]
	if rec["correlation_id"] != "cid-77" {
		t.Fatalf("correlation_id = %v", rec["correlation_id"])
	}
	extra := rec["extra_fields"].(map[string]any)
	if extra["timeout_ms"] != float64(5000) {
		t.Fatalf("timeout_ms = %v", extra["timeout_ms"])
	}
}

func TestSlogHandlerWithAttrsAndGroup(t *testing.T) {
	sl, sink := newSlogUnderTest(LevelDebug)

	sl.With("module", "fraud").WithGroup("server").InfoContext(context.Background(), "listening", "addr", ":8080")

	extra := sink.records(t)[0]["extra_fields"].(map[string]any)
	if extra["module"] != "fraud" {
		t.Fatalf("module = %v", extra["module"])
	}
	if extra["server.addr"] != ":8080" {
		t.Fatalf("server.addr = %v", extra["server.addr"])
	}
}

func TestSlogHandlerHonorsMinLevel(t *testing.T) {
	sl, sink := newSlogUnderTest(LevelWarning)

	sl.InfoContext(context.Background(), "filtered")
	sl.WarnContext(context.Background(), "kept")

	recs := sink.records(t)
	if len(recs) != 1 || recs[0]["message"] != "kept" {
		t.Fatalf("expected only the warning, got %v", recs)
	}
}
