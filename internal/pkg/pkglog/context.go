package pkglog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type logContextKey struct{}

// Fields is an open set of structured key/value pairs attached to a scope or a
// single record. The reserved keys "correlation_id", "transaction_id" and
// "user_id" are promoted to the identifier slots of the scope; everything else
// stays an extra field.
type Fields map[string]any

// Context is the set of correlating identifiers visible to the current
// execution context, plus any extra fields opened with it.
type Context struct {
	CorrelationID string
	TransactionID string
	UserID        string
	Extra         Fields
}

// OpenScope derives a context carrying the parent's logging context merged
// with fields (fields win on collision). If neither the parent nor fields
// carry a correlation ID, a fresh UUID is generated.
//
// Scopes nest through ordinary context derivation: the caller keeps using the
// parent context after the scoped work finishes, which restores the previous
// context exactly once regardless of how the work ended.
func OpenScope(ctx context.Context, fields Fields) context.Context {
	lc := FromContext(ctx)

	if lc.Extra != nil {
		merged := make(Fields, len(lc.Extra)+len(fields))
		for k, v := range lc.Extra {
			merged[k] = v
		}
		lc.Extra = merged
	}

	for k, v := range fields {
		switch k {
		case "correlation_id":
			if s, ok := v.(string); ok {
				if s != "" {
					lc.CorrelationID = s
				}
				continue
			}
		case "transaction_id":
			if s, ok := v.(string); ok {
				if s != "" {
					lc.TransactionID = s
				}
				continue
			}
		case "user_id":
			if s, ok := v.(string); ok {
				if s != "" {
					lc.UserID = s
				}
				continue
			}
		default:
			lc.setExtra(k, v)
			continue
		}

		// A malformed identifier never claims the slot, but the value stays
		// visible, stringified, in the extra fields.
		lc.setExtra(k, fmt.Sprint(v))
	}

	if lc.CorrelationID == "" {
		lc.CorrelationID = GenerateCorrelationID()
	}

	return context.WithValue(ctx, logContextKey{}, lc)
}

func (c *Context) setExtra(k string, v any) {
	if c.Extra == nil {
		c.Extra = make(Fields)
	}
	c.Extra[k] = v
}

// FromContext returns the logging context visible to ctx. When no scope is
// open it returns the zero Context; it never fails.
func FromContext(ctx context.Context) Context {
	lc, ok := ctx.Value(logContextKey{}).(Context)
	if !ok {
		return Context{}
	}
	return lc
}

// GenerateCorrelationID returns a fresh correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// GetCorrelationID returns the correlation ID stored in the context.
//
// Middleware is expected to open a scope early in the request lifecycle so the
// ID can be attached to logs and propagated to downstream calls. Returns an
// empty string when no scope is open.
func GetCorrelationID(ctx context.Context) string {
	return FromContext(ctx).CorrelationID
}

// SetCorrelationID opens a scope carrying only the given correlation ID.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return OpenScope(ctx, Fields{"correlation_id": cid})
}
