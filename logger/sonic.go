package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// ------------------------------------------------------------------------

// sonicLogger emits one JSON object per event via bytedance/sonic,
// for deployments that ship logs to a structured-log collector instead
// of stdLogger's human-readable line format.
type sonicLogger struct {
	mu    sync.Mutex
	dest  io.Writer
	start time.Time
}

// ------------------------------------------------------------------------

type sonicRecord struct {
	Level     string            `json:"level"`
	Elapsed   string            `json:"elapsed"`
	Type      string            `json:"type"`
	RequestID uint32            `json:"request_id"`
	DriverID  uint32            `json:"driver_id"`
	Values    map[string]string `json:"values,omitempty"`
}

// ------------------------------------------------------------------------

// NewSonicLogger returns a pointer to a newly created structured-JSON logger.
func NewSonicLogger(dest io.Writer) *sonicLogger {
	if dest == nil {
		dest = os.Stderr
	}

	return &sonicLogger{dest: dest, start: time.Now()}
}

// ------------------------------------------------------------------------

// Log logs an event as a single JSON line.
func (l *sonicLogger) Log(level Level, e *Event) {
	rec := sonicRecord{
		Level:     levelName(level),
		Elapsed:   time.Since(l.start).String(),
		Type:      e.Type,
		RequestID: e.RequestID,
		DriverID:  e.CollectorID,
		Values:    e.Values,
	}

	b, err := sonic.Marshal(&rec)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.dest.Write(b)
	l.dest.Write([]byte{'\n'})
}

// ------------------------------------------------------------------------

func levelName(l Level) string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}

	return "UNKNOWN"
}
