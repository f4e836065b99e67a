package observability

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RawLogConfig describes a rotating capture file for raw frames.
type RawLogConfig struct {
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

func DefaultRawLogConfig(path string) RawLogConfig {
	return RawLogConfig{Path: path, MaxSizeMB: 16, MaxBackups: 4, MaxAgeDays: 14}
}

// NewRawLog opens a size-rotated writer. Captures are replayable by a
// file transport as long as the file holds only binary frames.
func NewRawLog(cfg RawLogConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
