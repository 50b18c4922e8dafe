package util

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var GLOBAL_LOG_LEVEL = LogLevelInfo
var GLOBAL_LOG_CATEGORIES = LogPath | LogVoxel | LogIO | LogConfig

type LogLevel int

const (
	LogLevelError LogLevel = 1 << iota
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

type LogCategory int

const (
	LogVoxel LogCategory = 1 << iota
	LogPath
	LogIO
	LogConfig
	LogNavigation
)

func (c LogCategory) String() string {
	switch c {
	case LogVoxel:
		return "voxel"
	case LogPath:
		return "path"
	case LogIO:
		return "io"
	case LogConfig:
		return "config"
	case LogNavigation:
		return "navigation"
	}
	return "unknown"
}

var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the sink of all engine log calls. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func currentLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

func toSlogLevel(lvl LogLevel) slog.Level {
	switch lvl {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarning:
		return slog.LevelWarn
	case LogLevelDebug:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func log(cat LogCategory, lvl LogLevel, txt string, args ...any) {
	if lvl > GLOBAL_LOG_LEVEL {
		return
	}
	if GLOBAL_LOG_CATEGORIES&cat == 0 {
		return
	}
	attrs := append([]any{slog.String("category", cat.String())}, args...)
	currentLogger().Log(context.Background(), toSlogLevel(lvl), txt, attrs...)
}

func LogVoxelInfo(txt string, args ...any) {
	log(LogVoxel, LogLevelInfo, txt, args...)
}

func LogVoxelDebug(txt string, args ...any) {
	log(LogVoxel, LogLevelDebug, txt, args...)
}

func LogPathDebug(txt string, args ...any) {
	log(LogPath, LogLevelDebug, txt, args...)
}

func LogPathWarning(txt string, args ...any) {
	log(LogPath, LogLevelWarning, txt, args...)
}

func LogIOInfo(txt string, args ...any) {
	log(LogIO, LogLevelInfo, txt, args...)
}

func LogIOError(txt string, args ...any) {
	log(LogIO, LogLevelError, txt, args...)
}

func LogConfigInfo(txt string, args ...any) {
	log(LogConfig, LogLevelInfo, txt, args...)
}

func LogNavigationDebug(txt string, args ...any) {
	log(LogNavigation, LogLevelDebug, txt, args...)
}
