package pkglog

import (
	"context"
	"log/slog"
)

// InitSlog routes the default slog logger through the registry's application
// sink, so process-level slog calls emit the same JSON records as everything
// else.
func InitSlog(r *Registry) {
	slog.SetDefault(slog.New(&slogHandler{logger: r.application}))
}

// slogHandler adapts a pkglog Logger to the slog.Handler interface. It maps
// slog levels onto record levels and carries the record's own PC so source
// locations point at the slog call site.
type slogHandler struct {
	logger *Logger
	attrs  []any
	group  string
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.enabled(levelFromSlog(level))
}

func (h *slogHandler) Handle(ctx context.Context, rec slog.Record) error {
	kvs := make([]any, 0, len(h.attrs)+2*rec.NumAttrs())
	kvs = append(kvs, h.attrs...)

	rec.Attrs(func(a slog.Attr) bool {
		kvs = append(kvs, h.key(a.Key), a.Value.Resolve().Any())
		return true
	})

	h.logger.emit(ctx, levelFromSlog(rec.Level), rec.Message, kvs, rec.PC)

	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &slogHandler{logger: h.logger, group: h.group}
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.key(a.Key), a.Value.Resolve().Any())
	}

	return next
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := &slogHandler{logger: h.logger, attrs: h.attrs, group: name}
	if h.group != "" {
		next.group = h.group + "." + name
	}

	return next
}

func (h *slogHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}
