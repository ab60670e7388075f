package log

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

// TestLogger is a zerolog-backed Logger that captures JSON records in memory.
type TestLogger struct {
	*ZerologLogger
	buffer *bytes.Buffer
}

// NewTestLogger creates a TestLogger capturing records at level and above.
//
//	logger, buffer := log.NewTestLogger(log.LevelDebug)
//	logger.Info("test message", "key", "value")
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	zl := zerolog.New(buffer).Level(toZerologLevel(level))
	return &TestLogger{ZerologLogger: &ZerologLogger{logger: zl}, buffer: buffer}, buffer
}

// With implements Logger.With, keeping the capture buffer.
func (t *TestLogger) With(fields ...any) Logger {
	child := t.ZerologLogger.With(fields...).(*ZerologLogger)
	return &TestLogger{ZerologLogger: child, buffer: t.buffer}
}

// GetLogEntries parses the captured output into one map per record.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(t.buffer.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any record message contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if msg, ok := e[zerolog.MessageFieldName].(string); ok && strings.Contains(msg, message) {
			return true
		}
	}
	return false
}

// ContainsField reports whether any record has key set to value.
// Numbers are compared after JSON decoding, so pass float64 for numeric fields.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if v, ok := e[key]; ok && reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}

// CountLevel returns how many records were emitted at level ("info", "warn", ...).
func (t *TestLogger) CountLevel(level string) int {
	entries, err := t.GetLogEntries()
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e[zerolog.LevelFieldName] == level {
			n++
		}
	}
	return n
}

// Reset clears captured output.
func (t *TestLogger) Reset() {
	t.buffer.Reset()
}
