package logger

import (
	"context"
	"log/slog"
	"time"
)

// BroadcastHandler forwards records to next and mirrors them into the event
// feed. Grouped attributes are flattened to dotted keys, e.g. "fetch.attempt".
type BroadcastHandler struct {
	next   slog.Handler
	prefix string
	preset map[string]any
}

func NewBroadcastHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &BroadcastHandler{next: next}
}

func (h *BroadcastHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *BroadcastHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.preset)+r.NumAttrs())
	for k, v := range h.preset {
		fields[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(fields, h.prefix, a)
		return true
	})
	evt := Event{Level: r.Level.String(), Msg: r.Message}
	if !r.Time.IsZero() {
		evt.Time = r.Time.UTC().Format(time.RFC3339Nano)
	}
	if len(fields) > 0 {
		evt.Attrs = fields
	}
	events.push(evt)
	return h.next.Handle(ctx, r)
}

func (h *BroadcastHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	preset := make(map[string]any, len(h.preset)+len(attrs))
	for k, v := range h.preset {
		preset[k] = v
	}
	for _, a := range attrs {
		flatten(preset, h.prefix, a)
	}
	return &BroadcastHandler{next: h.next.WithAttrs(attrs), prefix: h.prefix, preset: preset}
}

func (h *BroadcastHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &BroadcastHandler{next: h.next.WithGroup(name), prefix: h.prefix + name + ".", preset: h.preset}
}

func flatten(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range v.Group() {
			flatten(dst, inner, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	switch v.Kind() {
	case slog.KindDuration:
		dst[prefix+a.Key] = v.Duration().String()
	case slog.KindTime:
		dst[prefix+a.Key] = v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			dst[prefix+a.Key] = err.Error()
			return
		}
		dst[prefix+a.Key] = v.Any()
	default:
		dst[prefix+a.Key] = v.Any()
	}
}
