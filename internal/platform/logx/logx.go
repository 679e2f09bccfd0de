// internal/platform/logx/logx.go
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	levelOff
)

var levelTags = [...]string{LevelDebug: "DBG", LevelInfo: "INF", LevelWarn: "WRN", LevelError: "ERR"}

// EnvLevel es la variable de entorno que fija el nivel por defecto.
const EnvLevel = "TRUSTLENS_LOG_LEVEL"

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// sink es el destino compartido por un logger y todos sus hijos.
type sink struct {
	mu  sync.Mutex
	w   io.Writer
	lvl Level
	now func() time.Time
}

type lineLogger struct {
	out   *sink
	scope string // "k=v k=v" ya renderizado
}

func New() Logger {
	return NewWithWriter(os.Stderr, ParseLevel(os.Getenv(EnvLevel)))
}

func NewWithLevel(lvl Level) Logger {
	return NewWithWriter(os.Stderr, lvl)
}

// NewWithWriter crea un logger que escribe en w (útil en tests).
func NewWithWriter(w io.Writer, lvl Level) Logger {
	return &lineLogger{out: &sink{w: w, lvl: lvl, now: time.Now}}
}

// NewNop descarta todo.
func NewNop() Logger {
	return NewWithWriter(io.Discard, levelOff)
}

// With retorna un logger hijo con campos fijos. El nivel es compartido con el padre.
func (l *lineLogger) With(kv ...any) Logger {
	return &lineLogger{out: l.out, scope: joinFields(l.scope, kvPairs(kv...))}
}

func (l *lineLogger) SetLevel(lvl Level) {
	l.out.mu.Lock()
	l.out.lvl = lvl
	l.out.mu.Unlock()
}

func (l *lineLogger) Debug(msg string, kv ...any) { l.write(LevelDebug, msg, kv) }
func (l *lineLogger) Info(msg string, kv ...any)  { l.write(LevelInfo, msg, kv) }
func (l *lineLogger) Warn(msg string, kv ...any)  { l.write(LevelWarn, msg, kv) }

// Err registra err en nivel error. Un err nil no escribe nada.
func (l *lineLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	l.write(LevelError, "", append([]any{"error", err.Error()}, kv...))
}

func (l *lineLogger) write(lvl Level, msg string, kv []any) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if lvl < l.out.lvl {
		return
	}

	var b strings.Builder
	b.WriteString(l.out.now().Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelTags[lvl])
	if msg = strings.TrimSpace(msg); msg != "" {
		b.WriteByte(' ')
		b.WriteString(msg)
	}
	if fields := joinFields(l.scope, kvPairs(kv...)); fields != "" {
		b.WriteByte(' ')
		b.WriteString(fields)
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(l.out.w, b.String())
}

func joinFields(scope string, pairs []string) string {
	if len(pairs) == 0 {
		return scope
	}
	rendered := strings.Join(pairs, " ")
	if scope == "" {
		return rendered
	}
	return scope + " " + rendered
}

// kvPairs renderiza pares clave/valor. Una clave sin valor se marca como (missing).
func kvPairs(kv ...any) []string {
	out := make([]string, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		var v any = "(missing)"
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		out = append(out, fmt.Sprintf("%v=%v", kv[i], v))
	}
	return out
}

// ParseLevel convierte un nombre de nivel ("debug", "warn", ...) en Level.
// Nombres desconocidos caen en LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
