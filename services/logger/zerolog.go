package logsvc

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/user"
)

// Logger writes structured logs through zerolog.
type Logger struct {
	zl zerolog.Logger
}

var _ core.Logger = (*Logger)(nil)

// New logs to out; human-readable in debug mode, JSON lines otherwise.
func New(out io.Writer, conf *core.Config) *Logger {
	if out == nil {
		out = os.Stdout
	}
	level := zerolog.InfoLevel
	if conf.Debug {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", conf.AppName).
		Str("env", conf.Env).
		Logger()
	return &Logger{zl: zl}
}

// Zerolog exposes the underlying logger, e.g. for request logging.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.zl }

// expected args: error | map[string]interface{} | user.User
func (l *Logger) write(evt *zerolog.Event, msg string, args []interface{}) {
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			evt = evt.Err(a)
			if l.zl.GetLevel() <= zerolog.DebugLevel {
				evt = evt.Str("stack", fmt.Sprintf("%+v", a))
			}
		case map[string]interface{}:
			evt = evt.Fields(a)
		case user.User:
			evt = evt.Dict("user", zerolog.Dict().Str("id", a.ID).Str("email", a.Email).Str("role", a.Role))
		default:
			evt = evt.Interface("arg", a)
		}
	}
	evt.Msg(msg)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.write(l.zl.Debug(), msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.write(l.zl.Info(), msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.write(l.zl.Warn(), msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.write(l.zl.Error(), msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.write(l.zl.Fatal(), msg, args) }
