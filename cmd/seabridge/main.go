package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/seabridge/internal/gateway"
	"github.com/danmuck/seabridge/internal/observability"
	"github.com/danmuck/seabridge/internal/server"
)

func main() {
	configPath := pflag.StringP("config", "c", "cmd/seabridge/config.toml", "gateway config file")
	logLevel := pflag.String("log-level", "", "log level override (trace|debug|info|warn|error|off)")
	adminAddr := pflag.String("admin-addr", "", `admin listen address override, "off" disables`)
	pflag.Parse()

	observability.InitLogger("seabridge")
	if err := run(*configPath, *logLevel, *adminAddr); err != nil {
		fmt.Fprintf(os.Stderr, "seabridge: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel, adminAddr string) error {
	s, err := loadSettings(configPath)
	if err != nil {
		return err
	}
	s.applyOverrides(logLevel, adminAddr)
	if s.logLevel != "" && !observability.SetLevel(s.logLevel) {
		return fmt.Errorf("unknown log level %q", s.logLevel)
	}
	log.Info().Str("path", configPath).Str("gateway", s.gateway.Name).Msg("loaded config")

	gw, err := gateway.New(s.gateway)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer stop()
		return gw.Run(gctx)
	})
	if addr := s.gateway.Admin.Addr; addr != "" {
		admin := server.New(s.gateway.Name, addr, s.gateway.Admin.CorsOrigins, func() any {
			return gw.Status()
		})
		group.Go(func() error { return admin.Run(gctx) })
	}
	if err := group.Wait(); err != nil {
		return err
	}
	log.Info().Msg("seabridge exited")
	return nil
}
