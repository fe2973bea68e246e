package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// LogMessageWire is the JSON form of a log record.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Source    string        `json:"source,omitempty"`
}

// LogAttrWire represents a single slog attribute.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "bool", "float64", "time", "error", "any"
	Value string `json:"value"` // String representation of the value
}

// Text renders the record as a single console line. The timestamp is left
// out; the host console is interactive.
func (m LogMessageWire) Text() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(m.Level)
	b.WriteString("] ")
	b.WriteString(m.Message)
	for _, a := range m.Attrs {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString("=")
		if a.Type == "string" || a.Type == "error" {
			if strings.ContainsAny(a.Value, " \t\n\"=") || a.Value == "" {
				b.WriteString(strconv.Quote(a.Value))
				continue
			}
		}
		b.WriteString(a.Value)
	}
	if m.Source != "" {
		b.WriteString(" source=")
		b.WriteString(m.Source)
	}
	return b.String()
}

// toLogAttrWire converts a slog.Attr to LogAttrWire.
func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{
		Key: attr.Key,
	}
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = attr.Value.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = strconv.FormatBool(attr.Value.Bool())
	case slog.KindFloat64:
		wire.Type = "float64"
		wire.Value = strconv.FormatFloat(attr.Value.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type = "time"
		wire.Value = attr.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type = "duration"
		wire.Value = attr.Value.Duration().String()
	case slog.KindAny:
		v := attr.Value.Any()
		switch {
		case v == nil:
			wire.Type = "any"
			wire.Value = "<nil>"
		case isError(v):
			wire.Type = "error"
			wire.Value = v.(error).Error()
		case isStringer(v):
			wire.Type = "string"
			wire.Value = v.(fmt.Stringer).String()
		default:
			if data, err := json.Marshal(v); err == nil {
				wire.Type = "json"
				wire.Value = string(data)
			} else {
				wire.Type = "any"
				wire.Value = fmt.Sprintf("%v", v)
			}
		}
	case slog.KindGroup:
		// Groups are flattened into dotted keys.
		var parts []string
		for _, a := range attr.Value.Group() {
			w := toLogAttrWire(a)
			parts = append(parts, w.Key+"="+w.Value)
		}
		wire.Type = "group"
		wire.Value = "{" + strings.Join(parts, " ") + "}"
	default:
		wire.Type = "any"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	}
	return wire
}

func isError(v any) bool {
	_, ok := v.(error)
	return ok
}

func isStringer(v any) bool {
	_, ok := v.(fmt.Stringer)
	return ok
}
