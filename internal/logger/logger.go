package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"yt-comment-crawler-go/internal/config"
)

// level is shared by every handler Init installs so it can be changed
// without rebuilding the logger.
var level = new(slog.LevelVar)

func InitFromConfig() {
	Init(os.Stderr, config.AppConfig.LogLevel, config.AppConfig.LogFormat)
}

// Init installs the process-wide slog logger: JSON by default, logfmt-style
// text when format is "text". Every record is mirrored into the event feed
// behind Recent and Subscribe.
func Init(w io.Writer, lvl, format string) {
	if w == nil {
		w = os.Stderr
	}
	SetLevel(lvl)
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(NewBroadcastHandler(h)))
}

// SetLevel accepts slog level names ("debug", "WARN", "error+2") and
// "warning"; anything else means info.
func SetLevel(v string) {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "warning") {
		v = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		l = slog.LevelInfo
	}
	level.Set(l)
}

func With(args ...any) *slog.Logger { return slog.Default().With(args...) }

func Debug(msg string, args ...any) { slog.Default().Debug(msg, args...) }

func Info(msg string, args ...any) { slog.Default().Info(msg, args...) }

func Warn(msg string, args ...any) { slog.Default().Warn(msg, args...) }

func Error(msg string, args ...any) { slog.Default().Error(msg, args...) }
