package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
)

var (
	providerMu     sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(LevelInfo)
)

// SetupLogger installs a zerolog provider writing to w as the global provider
// and routes warnings raised through pkg/errors into it. format is "json" or
// "console".
func SetupLogger(level, format string, w io.Writer) LoggerProvider {
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	p := NewZerologProviderWithWriter(ToLogLevel(level), w)
	SetProvider(p)
	scigoErrors.SetZerologWarnFunc(p.warn)
	return p
}

// SetProvider replaces the global logger provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	globalProvider = p
}

// GetProvider returns the global logger provider.
func GetProvider() LoggerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return globalProvider
}

// GetLogger returns the default logger from the global provider.
func GetLogger() Logger {
	return GetProvider().GetLogger()
}

// GetLoggerWithName returns a component logger from the global provider.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}

// ToLogLevel parses a level name. Unknown names map to LevelInfo.
func ToLogLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error", "fatal", "panic":
		return LevelError
	default:
		return LevelInfo
	}
}
