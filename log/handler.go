// Package log provides structured logging (slog) routed to the host
// runtime's error console.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/reglet-dev/reglet-ffi/domain/ports"
)

// ConsoleHandler implements slog.Handler on top of the host console.
type ConsoleHandler struct {
	console ports.Console
	attrs   []slog.Attr
	groups  []string
	opts    handlerConfig
}

// HandlerOption configures the ConsoleHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
	json      bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithJSON writes one JSON document per record instead of a text line.
func WithJSON(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.json = enabled
	}
}

// NewHandler creates a ConsoleHandler writing to console.
func NewHandler(console ports.Console, opts ...HandlerOption) *ConsoleHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ConsoleHandler{console: console, opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandler := *h
	newHandler.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &newHandler
}

// WithGroup returns a handler that prefixes later attribute keys with name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newHandler := *h
	newHandler.groups = append(append([]string(nil), h.groups...), name)
	return &newHandler
}

func (h *ConsoleHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

// Handle formats record and writes it to the error console.
func (h *ConsoleHandler) Handle(_ context.Context, record slog.Record) error {
	msg := LogMessageWire{
		Level:     record.Level.String(),
		Message:   record.Message,
		Timestamp: record.Time,
	}
	for _, a := range h.attrs {
		msg.Attrs = append(msg.Attrs, toLogAttrWire(a))
	}
	var recordAttrs []slog.Attr
	record.Attrs(func(attr slog.Attr) bool {
		recordAttrs = append(recordAttrs, attr)
		return true
	})
	for _, a := range h.qualify(recordAttrs) {
		msg.Attrs = append(msg.Attrs, toLogAttrWire(a))
	}
	if h.opts.addSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		msg.Source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
	}

	if h.opts.json {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("log: failed to marshal record: %w", err)
		}
		h.console.WriteErr(string(data) + "\n")
		return nil
	}
	h.console.WriteErr(msg.Text() + "\n")
	return nil
}
