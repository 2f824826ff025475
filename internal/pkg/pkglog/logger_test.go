package pkglog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type memorySink struct {
	mu    sync.Mutex
	lines [][]byte
	err   error
}

func (s *memorySink) WriteLine(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	buf := make([]byte, len(line))
	copy(buf, line)
	s.lines = append(s.lines, buf)

	return nil
}

func (s *memorySink) Close() error {
	return nil
}

func (s *memorySink) records(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0, len(s.lines))
	for _, line := range s.lines {
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("line is not valid JSON: %v: %s", err, line)
		}
		out = append(out, m)
	}

	return out
}

type countObserver struct {
	mu        sync.Mutex
	emitted   int
	dropped   int
	writeErrs int
	fallbacks int
}

func (o *countObserver) RecordEmitted(string, string) {
	o.mu.Lock()
	o.emitted++
	o.mu.Unlock()
}

func (o *countObserver) RecordDropped(string) {
	o.mu.Lock()
	o.dropped++
	o.mu.Unlock()
}

func (o *countObserver) SinkWriteError(string) {
	o.mu.Lock()
	o.writeErrs++
	o.mu.Unlock()
}

func (o *countObserver) SerializationFallback() {
	o.mu.Lock()
	o.fallbacks++
	o.mu.Unlock()
}

func newTestLogger(minLevel Level, obs Observer) (*Logger, *memorySink) {
	sink := &memorySink{}
	c := &core{
		service:  "fraud-detection",
		hostname: "testhost",
		pid:      42,
		process:  "fraudlog.test",
		minLevel: minLevel,
		observer: obs,
	}

	return &Logger{core: c, name: "application", component: "application", sink: sink}, sink
}

func TestEmitRecordStructure(t *testing.T) {
	logger, sink := newTestLogger(LevelDebug, nil)

	ctx := OpenScope(context.Background(), Fields{
		"correlation_id": "cid-1",
		"user_id":        "user-7",
		"region":         "eu",
	})
	logger.Info(ctx, "hello", "amount", 1000)

	recs := sink.records(t)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]

	for _, key := range []string{"timestamp", "level", "logger", "component", "message", "service", "hostname", "pid", "process", "correlation_id", "location"} {
		if _, ok := rec[key]; !ok {
			t.Fatalf("missing reserved key %q in %v", key, rec)
		}
	}

	if rec["level"] != "INFO" || rec["message"] != "hello" {
		t.Fatalf("unexpected level/message: %v / %v", rec["level"], rec["message"])
	}
	if rec["correlation_id"] != "cid-1" || rec["user_id"] != "user-7" {
		t.Fatalf("context ids not flattened: %v", rec)
	}

	if _, err := time.Parse(timestampLayout, rec["timestamp"].(string)); err != nil {
		t.Fatalf("timestamp not parseable: %v", err)
	}

	extra, ok := rec["extra_fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected extra_fields map, got %T", rec["extra_fields"])
	}
	if extra["amount"] != float64(1000) {
		t.Fatalf("expected amount=1000, got %v", extra["amount"])
	}
	if extra["region"] != "eu" {
		t.Fatalf("expected scope extra region=eu, got %v", extra["region"])
	}
}

func TestReservedKeysCannotBeShadowed(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	logger.Info(context.Background(), "msg", "timestamp", "bogus", "level", "bogus", "service", "bogus")

	rec := sink.records(t)[0]
	if rec["level"] != "INFO" {
		t.Fatalf("reserved level was shadowed: %v", rec["level"])
	}
	if rec["service"] != "fraud-detection" {
		t.Fatalf("reserved service was shadowed: %v", rec["service"])
	}
	if _, err := time.Parse(timestampLayout, rec["timestamp"].(string)); err != nil {
		t.Fatalf("reserved timestamp was shadowed: %v", rec["timestamp"])
	}

	extra := rec["extra_fields"].(map[string]any)
	if extra["timestamp"] != "bogus" || extra["level"] != "bogus" || extra["service"] != "bogus" {
		t.Fatalf("caller fields not routed to extra_fields: %v", extra)
	}
}

func TestNonSerializableFieldCoerced(t *testing.T) {
	obs := &countObserver{}
	logger, sink := newTestLogger(LevelInfo, obs)

	logger.Info(context.Background(), "msg", "chan", make(chan int), "err", errors.New("boom"))

	rec := sink.records(t)[0]
	extra := rec["extra_fields"].(map[string]any)
	if _, ok := extra["chan"].(string); !ok {
		t.Fatalf("expected coerced string for chan, got %T", extra["chan"])
	}
	if extra["err"] != "boom" {
		t.Fatalf("expected stringified error, got %v", extra["err"])
	}
	if obs.fallbacks == 0 {
		t.Fatal("expected serialization fallback to be counted")
	}
}

func TestCallerLocation(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	logger.Info(context.Background(), "msg")

	rec := sink.records(t)[0]
	loc := rec["location"].(map[string]any)
	if !strings.HasSuffix(loc["file"].(string), "logger_test.go") {
		t.Fatalf("expected caller location in test file, got %v", loc["file"])
	}
	if loc["module"] != "pkglog" {
		t.Fatalf("expected module pkglog, got %v", loc["module"])
	}
	if loc["function"] == "" {
		t.Fatal("expected caller function name")
	}
}

func TestMinLevelFilter(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	logger.Debug(context.Background(), "dropped")
	logger.Info(context.Background(), "kept")

	recs := sink.records(t)
	if len(recs) != 1 || recs[0]["message"] != "kept" {
		t.Fatalf("expected only the INFO record, got %v", recs)
	}
}

func TestAutoCorrelationWithoutScope(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	logger.Info(context.Background(), "no scope")

	rec := sink.records(t)[0]
	if cid, _ := rec["correlation_id"].(string); cid == "" {
		t.Fatal("expected auto-generated correlation id")
	}
}

func TestExplicitIdentifierWinsOverScope(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	ctx := OpenScope(context.Background(), Fields{"transaction_id": "tx-scope"})
	logger.Info(ctx, "msg", "transaction_id", "tx-arg")

	rec := sink.records(t)[0]
	if rec["transaction_id"] != "tx-arg" {
		t.Fatalf("expected explicit transaction id to win, got %v", rec["transaction_id"])
	}
	if extra, ok := rec["extra_fields"].(map[string]any); ok {
		if _, dup := extra["transaction_id"]; dup {
			t.Fatal("transaction_id duplicated into extra_fields")
		}
	}
}

func TestErrorMirror(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)
	mirror := &memorySink{}
	logger.core.errors = mirror

	logger.Info(context.Background(), "plain")
	logger.Error(context.Background(), "bad")

	if got := len(mirror.records(t)); got != 1 {
		t.Fatalf("expected 1 mirrored record, got %d", got)
	}
	if len(sink.records(t)) != 2 {
		t.Fatalf("expected both records on the primary sink")
	}
}

func TestSinkWriteErrorNeverPropagates(t *testing.T) {
	obs := &countObserver{}
	logger, sink := newTestLogger(LevelInfo, obs)
	sink.err = errors.New("disk full")

	logger.Info(context.Background(), "swallowed")

	if obs.writeErrs == 0 {
		t.Fatal("expected write error to be counted")
	}
}

func TestContextIsolationBetweenConcurrentLogCalls(t *testing.T) {
	logger, sink := newTestLogger(LevelInfo, nil)

	var wg sync.WaitGroup
	for _, id := range []string{"ctx-a", "ctx-b"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			ctx := OpenScope(context.Background(), Fields{"correlation_id": id, "owner": id})
			for i := 0; i < 50; i++ {
				logger.Info(ctx, "work")
			}
		}(id)
	}
	wg.Wait()

	for _, rec := range sink.records(t) {
		cid := rec["correlation_id"].(string)
		owner := rec["extra_fields"].(map[string]any)["owner"].(string)
		if cid != owner {
			t.Fatalf("record mixed contexts: correlation_id=%s owner=%s", cid, owner)
		}
	}
}
