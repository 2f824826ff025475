package pkglog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"
)

// Level is the severity of a log record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "INFO"
	}
}

// ParseLevel maps a config value to a Level. Unknown values default to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

func levelFromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarning
	case l >= slog.LevelError+4:
		return LevelCritical
	default:
		return LevelError
	}
}

// record is the JSON document written to a sink, one per line. Reserved keys
// live at the top level; caller-supplied fields always go under extra_fields
// so they can never shadow a reserved key.
type record struct {
	Timestamp     string         `json:"timestamp"`
	Level         string         `json:"level"`
	Logger        string         `json:"logger"`
	Component     string         `json:"component"`
	Message       string         `json:"message"`
	Service       string         `json:"service"`
	Hostname      string         `json:"hostname"`
	PID           int            `json:"pid"`
	Process       string         `json:"process"`
	CorrelationID string         `json:"correlation_id"`
	TransactionID string         `json:"transaction_id,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	Location      location       `json:"location"`
	Extra         map[string]any `json:"extra_fields,omitempty"`
}

type location struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
	Module   string `json:"module"`
}

const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func locationFromPC(pc uintptr) location {
	if pc == 0 {
		return location{}
	}

	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.Function == "" && frame.File == "" {
		return location{}
	}

	full := frame.Function
	fn := full
	module := ""
	if idx := strings.LastIndex(full, "/"); idx != -1 {
		fn = full[idx+1:]
	}
	if idx := strings.Index(fn, "."); idx != -1 {
		module = fn[:idx]
		fn = fn[idx+1:]
	}

	file := frame.File
	if idx := strings.Index(file, "/internal/"); idx != -1 {
		file = file[idx+1:]
	}

	return location{
		File:     file,
		Line:     frame.Line,
		Function: fn,
		Module:   module,
	}
}

// jsonValue returns v unchanged when it can be represented as JSON, otherwise
// its string form. A single bad field never aborts the whole log line.
func jsonValue(v any, obs Observer) any {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case error:
		return fmt.Sprint(v)
	}

	if _, err := json.Marshal(v); err != nil {
		if obs != nil {
			obs.SerializationFallback()
		}
		return fmt.Sprint(v)
	}
	return v
}
