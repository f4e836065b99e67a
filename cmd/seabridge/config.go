package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/seabridge/internal/config"
)

type settings struct {
	gateway config.Gateway
	// logLevel is empty unless the file sets it, so env overrides still win.
	logLevel string
}

func loadSettings(path string) (settings, error) {
	cfg := config.Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return settings{}, fmt.Errorf("load seabridge config: %w", err)
	}
	for _, key := range meta.Undecoded() {
		log.Warn().Str("key", key.String()).Str("path", path).Msg("ignoring unknown config key")
	}

	out := settings{gateway: cfg}
	if meta.IsDefined("log", "level") {
		out.logLevel = strings.TrimSpace(cfg.Log.Level)
	}
	if meta.IsDefined("admin", "addr") {
		out.gateway.Admin.Addr = strings.TrimSpace(cfg.Admin.Addr)
	}
	if meta.IsDefined("name") {
		out.gateway.Name = strings.TrimSpace(cfg.Name)
	}
	if err := config.Validate(out.gateway); err != nil {
		return settings{}, fmt.Errorf("validate seabridge config: %w", err)
	}
	return out, nil
}

// applyOverrides layers command line values over the file.
func (s *settings) applyOverrides(logLevel, adminAddr string) {
	if v := strings.TrimSpace(logLevel); v != "" {
		s.logLevel = v
	}
	switch v := strings.TrimSpace(adminAddr); v {
	case "":
	case "off", "none":
		s.gateway.Admin.Addr = ""
	default:
		s.gateway.Admin.Addr = v
	}
}
