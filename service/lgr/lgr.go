package lgr

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/natefinch/lumberjack"
)

// Logger is the process-wide logger. Until Setup is called it only writes to stdout.
var Logger = slog.New(newTraceHandler(newConsoleHandler(os.Stdout, slog.LevelInfo)))

var fileLogger *lumberjack.Logger

// Setup re-creates Logger so that it writes colored lines to stdout and JSON lines
// to a rotating file. An empty file name keeps the console output only.
func Setup(fileName string, level string) {
	lvl := ParseLevel(level)

	handlers := []slog.Handler{newConsoleHandler(os.Stdout, lvl)}
	if fileName != "" {
		fileLogger = &lumberjack.Logger{
			Filename:   fileName,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     7,    // days
			Compress:   true, // compress old logs
		}
		handlers = append(handlers, newFileHandler(fileLogger, lvl))
	}

	Logger = slog.New(newTraceHandler(fanout(handlers)))
}

// Close flushes and closes the log file if one was opened.
func Close() error {
	if fileLogger == nil {
		return nil
	}
	return fileLogger.Close()
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Err attaches a stack trace to err so that the file handler can render it.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Any("error", nil)
	}
	return slog.Any("error", xerrors.New(err))
}

func newFileHandler(w io.Writer, lvl slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceAttr,
	})
}

type stackFrame struct {
	Func   string `json:"func"`
	Source string `json:"source"`
	Line   int    `json:"line"`
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	if err, ok := a.Value.Any().(error); ok {
		a.Value = fmtErr(err)
	}
	return a
}

func fmtErr(err error) slog.Value {
	values := []slog.Attr{slog.String("msg", err.Error())}
	if frames := marshalStack(err); frames != nil {
		values = append(values, slog.Any("trace", frames))
	}
	return slog.GroupValue(values...)
}

func marshalStack(err error) []stackFrame {
	trace := xerrors.StackTrace(err)
	if len(trace) == 0 {
		return nil
	}

	frames := trace.Frames()
	s := make([]stackFrame, len(frames))
	for i, v := range frames {
		s[i] = stackFrame{
			Source: filepath.Join(filepath.Base(filepath.Dir(v.File)), filepath.Base(v.File)),
			Func:   filepath.Base(v.Function),
			Line:   v.Line,
		}
	}
	return s
}
