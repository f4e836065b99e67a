package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/danmuck/seabridge/internal/config"
	"github.com/danmuck/seabridge/internal/observability"
)

var defaultPaths = map[string]string{
	"gateway": "cmd/seabridge/config.toml",
	"replay":  "cmd/seabridge/replay.toml",
}

func main() {
	kind := pflag.String("kind", "gateway", "config kind: gateway|replay")
	output := pflag.String("output", "", "output path for config template")
	validate := pflag.Bool("validate", false, "validate an existing config file")
	input := pflag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := pflag.Bool("force", false, "overwrite existing config file")
	pflag.Parse()

	observability.InitLogger("configgen")
	fallback, ok := defaultPaths[*kind]
	if !ok {
		log.Fatal().Str("kind", *kind).Msg("unknown kind")
	}

	if *validate {
		path := *input
		if path == "" {
			path = fallback
		}
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatal().Err(err).Msg("config invalid")
		}
		log.Info().
			Str("kind", *kind).
			Str("path", path).
			Int("transports", len(cfg.Transports)).
			Int("devices", len(cfg.Devices)).
			Int("bridges", len(cfg.Bridges)).
			Msg("validated config")
		return
	}

	target := *output
	if target == "" {
		target = fallback
	}
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal().Err(err).Msg("write template failed")
	}
	log.Info().Str("kind", *kind).Str("path", target).Msg("wrote config template")
}
