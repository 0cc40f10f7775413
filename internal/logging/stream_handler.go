package logging

import (
	"context"
	"log/slog"
	"strings"

	"reelmux/internal/services"
)

type streamHandler struct {
	hub    *StreamHub
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewStreamHandler returns a slog handler that publishes records at or above
// level into hub.
func NewStreamHandler(hub *StreamHub, level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &streamHandler{hub: hub, level: level}
}

func (h *streamHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.hub != nil && level >= h.level.Level()
}

func (h *streamHandler) Handle(ctx context.Context, record slog.Record) error {
	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, nil, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	evt := LogEvent{
		Timestamp: record.Time.UTC(),
		Level:     levelLabel(record.Level),
		Message:   strings.TrimSpace(record.Message),
	}
	if ctx != nil {
		if rid, ok := services.RequestIDFromContext(ctx); ok {
			evt.RequestID = rid
		}
	}
	for _, field := range kvs {
		switch field.key {
		case "":
			continue
		case FieldComponent:
			evt.Component = attrString(field.value)
		case FieldRequestID:
			evt.RequestID = attrString(field.value)
		default:
			if evt.Fields == nil {
				evt.Fields = make(map[string]string, len(kvs))
			}
			evt.Fields[field.key] = attrString(field.value)
		}
	}
	h.hub.Publish(evt)
	return nil
}

func (h *streamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, attr := range attrs {
		if len(h.groups) > 0 {
			attr.Key = strings.Join(append(append([]string(nil), h.groups...), attr.Key), ".")
		}
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

func (h *streamHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}
