package pkglog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/time/rate"
)

// core holds process-wide record metadata and policy shared by every logger
// built from one Registry.
type core struct {
	service  string
	hostname string
	pid      int
	process  string
	minLevel Level
	sampler  *rate.Limiter // nil disables debug sampling
	observer Observer
	errors   Sink // mirror for ERROR and CRITICAL records, may be nil
}

// Logger emits structured records for one named logger bound to a component
// and a sink. It is stateless with respect to requests and safe for
// concurrent use.
type Logger struct {
	core      *core
	name      string
	component string
	sink      Sink
}

func (l *Logger) Debug(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, LevelDebug, msg, kvs, 2)
}

func (l *Logger) Info(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, LevelInfo, msg, kvs, 2)
}

func (l *Logger) Warning(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, LevelWarning, msg, kvs, 2)
}

func (l *Logger) Error(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, LevelError, msg, kvs, 2)
}

func (l *Logger) Critical(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, LevelCritical, msg, kvs, 2)
}

// log resolves the caller location skip frames above it and emits. Public
// methods pass 2 so the record points at their caller, not at pkglog.
func (l *Logger) log(ctx context.Context, level Level, msg string, kvs []any, skip int) {
	if !l.enabled(level) {
		return
	}

	var pc uintptr
	if c, _, _, ok := runtime.Caller(skip); ok {
		pc = c
	}

	l.emit(ctx, level, msg, kvs, pc)
}

func (l *Logger) enabled(level Level) bool {
	if level < l.core.minLevel {
		return false
	}
	if level == LevelDebug && l.core.sampler != nil && !l.core.sampler.Allow() {
		return false
	}
	return true
}

// emit builds the record and hands the serialized line to the sink. It never
// returns an error; logging is invisible to business control flow.
func (l *Logger) emit(ctx context.Context, level Level, msg string, kvs []any, pc uintptr) {
	lc := FromContext(ctx)

	rec := record{
		Timestamp:     formatTimestamp(time.Now()),
		Level:         level.String(),
		Logger:        l.name,
		Component:     l.component,
		Message:       msg,
		Service:       l.core.service,
		Hostname:      l.core.hostname,
		PID:           l.core.pid,
		Process:       l.core.process,
		CorrelationID: lc.CorrelationID,
		TransactionID: lc.TransactionID,
		UserID:        lc.UserID,
		Location:      locationFromPC(pc),
	}

	extra := make(map[string]any, len(lc.Extra)+len(kvs)/2)
	for k, v := range lc.Extra {
		extra[k] = jsonValue(v, l.core.observer)
	}

	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			key = fmt.Sprintf("!BADKEY(%v)", kvs[i])
		}

		// Identifier keys update the record slots instead of extra_fields,
		// so an explicit argument wins over the ambient scope.
		switch key {
		case "correlation_id":
			if s, ok := kvs[i+1].(string); ok && s != "" {
				rec.CorrelationID = s
				continue
			}
		case "transaction_id":
			if s, ok := kvs[i+1].(string); ok && s != "" {
				rec.TransactionID = s
				continue
			}
		case "user_id":
			if s, ok := kvs[i+1].(string); ok && s != "" {
				rec.UserID = s
				continue
			}
		}

		extra[key] = jsonValue(kvs[i+1], l.core.observer)
	}
	if len(kvs)%2 != 0 {
		extra["!BADKEY"] = jsonValue(kvs[len(kvs)-1], l.core.observer)
	}

	// Every record carries a correlation ID even outside any scope.
	if rec.CorrelationID == "" {
		rec.CorrelationID = GenerateCorrelationID()
	}

	if len(extra) > 0 {
		rec.Extra = extra
	}

	line, err := json.Marshal(rec)
	if err != nil {
		// jsonValue already degraded individual fields; reaching here means
		// something unexpected. Report and move on.
		if l.core.observer != nil {
			l.core.observer.SerializationFallback()
		}
		fmt.Fprintf(os.Stderr, "pkglog: marshal record failed: %v\n", err)
		return
	}
	line = append(line, '\n')

	if l.core.observer != nil {
		l.core.observer.RecordEmitted(rec.Level, l.component)
	}

	if err := l.sink.WriteLine(line); err != nil {
		if l.core.observer != nil {
			l.core.observer.SinkWriteError(l.component)
		}
		fmt.Fprintf(os.Stderr, "pkglog: write failed for %q: %v\n", l.component, err)
	}

	if level >= LevelError && l.core.errors != nil && l.core.errors != l.sink {
		//nolint:errcheck // the mirror is best effort
		l.core.errors.WriteLine(line)
	}
}
