package logging

import (
	"io"
	"strings"

	"github.com/phuslu/log"
)

var levels = map[string]log.Level{
	"trace": log.TraceLevel,
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
	"fatal": log.FatalLevel,
	"panic": log.PanicLevel,
}

// ParseLevel maps a level name onto a log level. Unknown names fall back to info.
func ParseLevel(level string) (log.Level, bool) {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l, true
	}
	return log.InfoLevel, false
}

func NewLogger(level string) log.Logger {
	l, ok := ParseLevel(level)
	logger := log.Logger{
		Level:  l,
		Caller: 0,
		Writer: &log.ConsoleWriter{
			ColorOutput:    false,
			EndWithMessage: true,
		},
	}
	if !ok {
		logger.Warn().Str("level", level).Msg("unknown log level, using info")
	}
	return logger
}

// Discard drops everything; used by tests.
func Discard() log.Logger {
	return log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
