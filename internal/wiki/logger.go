package wiki

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// Logger records API traffic for debugging. Implementations must be safe
// for concurrent use; the loader issues requests from several goroutines.
type Logger interface {
	// LogRequest logs an outgoing request to api with its query parameters.
	LogRequest(api string, params url.Values)

	// LogResponse logs the outcome of a request.
	LogResponse(api string, status int, size int, elapsed time.Duration)
}

// NopLogger discards all log output. It is the default.
type NopLogger struct{}

func (NopLogger) LogRequest(string, url.Values) {}

func (NopLogger) LogResponse(string, int, int, time.Duration) {}

type logEntry struct {
	Timestamp string            `json:"ts"`
	Type      string            `json:"type"`
	API       string            `json:"api"`
	Params    map[string]string `json:"params,omitempty"`
	Status    int               `json:"status,omitempty"`
	Bytes     *int              `json:"bytes,omitempty"`
	ElapsedMS *int64            `json:"elapsed_ms,omitempty"`
}

// FileLogger writes one JSON object per line to an io.Writer.
type FileLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

func NewFileLogger(w io.Writer) *FileLogger {
	return &FileLogger{w: w, now: time.Now}
}

func (l *FileLogger) LogRequest(api string, params url.Values) {
	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	l.write(logEntry{
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Type:      "request",
		API:       api,
		Params:    flat,
	})
}

func (l *FileLogger) LogResponse(api string, status int, size int, elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	l.write(logEntry{
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Type:      "response",
		API:       api,
		Status:    status,
		Bytes:     &size,
		ElapsedMS: &ms,
	})
}

// write drops entries that fail to serialise rather than disturb a load.
func (l *FileLogger) write(entry logEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s\n", data)
}
