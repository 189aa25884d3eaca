package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	mu     sync.RWMutex
	logger zerolog.Logger
	inited bool
)

// initLogger initializes the global logger to write structured JSON to stderr.
func initLogger() {
	mu.Lock()
	defer mu.Unlock()
	if inited {
		return
	}
	logger = zerolog.New(os.Stderr).With().
		Str("service", "homecal").
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)
	inited = true
}

func SetLevel(l Level) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	switch l {
	case LevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LevelInfo:
		logger = logger.Level(zerolog.InfoLevel)
	case LevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	}
}

func Debug(msg string, kv ...any) {
	initLogger()
	mu.RLock()
	ev := logger.Debug()
	mu.RUnlock()
	appendKVs(ev, kv).Msg(msg)
}

func Info(msg string, kv ...any) {
	initLogger()
	mu.RLock()
	ev := logger.Info()
	mu.RUnlock()
	appendKVs(ev, kv).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	mu.RLock()
	ev := logger.Error().Err(err)
	mu.RUnlock()
	appendKVs(ev, kv).Msg(msg)
}

// appendKVs attaches key-value pairs to an event. Expects kv as pairs:
// key, value, key, value, ... Non-string keys are skipped; if the number
// of args is odd, the last one is ignored.
func appendKVs(ev *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	return ev
}
