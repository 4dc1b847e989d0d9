package pkg

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// InitLogger 按配置构造全局 logger，format 为 console 时输出人类可读格式
func InitLogger(level, format string) zerolog.Logger {
	return NewLogger(os.Stdout, level, format)
}

func NewLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	return zerolog.New(zerolog.SyncWriter(w)).Level(lvl).With().Timestamp().Logger()
}
