// Package logging provides a small, dependency-free structured logger.
//
// Output is deterministic JSON: a sorted array of {"k":...,"v":...} pairs
// rather than a plain map, so two log lines built from the same fields
// always serialize identically regardless of Go's map iteration order.
package logging

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
)

// Logger writes one JSON object per line to an underlying io.Writer.
// It is safe for concurrent use.
type Logger struct {
	out io.Writer
	mu  sync.Mutex
}

type kv struct {
	K string `json:"k"`
	V any    `json:"v"`
}

// New returns a Logger writing to out. A nil out makes Log a no-op.
func New(out io.Writer) *Logger {
	return &Logger{out: out}
}

// Log emits one line: level, event, and the given fields, field keys sorted.
// Marshal or write failures are swallowed — logging must never crash a run.
func (l *Logger) Log(level, event string, fields map[string]any) {
	if l == nil || l.out == nil {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	arr := make([]kv, 0, len(keys)+2)
	arr = append(arr, kv{K: "level", V: norm(level)})
	arr = append(arr, kv{K: "event", V: norm(event)})
	for _, k := range keys {
		arr = append(arr, kv{K: norm(k), V: normalizeAny(fields[k])})
	}

	b, err := json.Marshal(arr)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(b, '\n'))
}

func (l *Logger) Info(event string, fields map[string]any)  { l.Log("info", event, fields) }
func (l *Logger) Warn(event string, fields map[string]any)  { l.Log("warn", event, fields) }
func (l *Logger) Error(event string, fields map[string]any) { l.Log("error", event, fields) }

func norm(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

func normalizeAny(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return norm(t)
	default:
		return v
	}
}
