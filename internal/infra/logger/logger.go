// Package logger — slog с JSON-выводом в stdout: строки разбирает
// коллектор хостинга, человекочитаемый формат не нужен.
package logger

import (
	"log/slog"
	"os"
)

const envDev = "dev"

// New подбирает уровень по окружению: debug только в dev,
// прод не шумит трассировкой апдейтов.
func New(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == envDev {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
