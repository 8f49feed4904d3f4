package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TraceEntry is one NDJSON line describing a provider exchange.
type TraceEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Driver      string          `json:"driver"`
	Endpoint    string          `json:"endpoint"`
	Model       string          `json:"model,omitempty"`
	PromptSlug  string          `json:"prompt_slug,omitempty"`
	RequestBody json.RawMessage `json:"request_body,omitempty"`
	StatusCode  int             `json:"status_code,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
}

// Tracer appends trace entries to a writer, one JSON object per line.
type Tracer struct {
	mu  sync.Mutex
	out io.WriteCloser
	enc *json.Encoder
}

// NewTracer wraps out.
func NewTracer(out io.WriteCloser) *Tracer {
	return &Tracer{out: out, enc: json.NewEncoder(out)}
}

var (
	activeMu sync.RWMutex
	active   *Tracer
)

// EnableTracing starts tracing to the file at path. The returned function
// stops tracing and closes the file.
func EnableTracing(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- trace path is operator-provided
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	SetTracer(NewTracer(f))
	return func() { SetTracer(nil) }, nil
}

// SetTracer replaces the active tracer, closing the previous one.
func SetTracer(t *Tracer) {
	activeMu.Lock()
	previous := active
	active = t
	activeMu.Unlock()

	if previous != nil && previous != t {
		_ = previous.Close()
	}
}

// IsTracingEnabled reports whether a tracer is active.
func IsTracingEnabled() bool {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return active != nil
}

// Trace records entry on the active tracer, if any.
func Trace(entry TraceEntry) {
	activeMu.RLock()
	t := active
	activeMu.RUnlock()
	t.Write(entry)
}

// Write records a trace entry.
func (t *Tracer) Write(entry TraceEntry) {
	if t == nil || t.enc == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.enc.Encode(entry)
}

// Close closes the underlying writer.
func (t *Tracer) Close() error {
	if t == nil || t.out == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Close()
}
