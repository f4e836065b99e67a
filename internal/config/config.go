package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/seabridge/internal/observability"
	"github.com/danmuck/seabridge/internal/protocol/frame"
	"github.com/danmuck/seabridge/internal/transport"
)

type Protocol string

const (
	ProtocolSeaTalk Protocol = "seatalk"
	ProtocolNMEA    Protocol = "nmea"
)

// Gateway is the full process configuration file.
type Gateway struct {
	Name       string             `toml:"name"`
	Log        LogConfig          `toml:"log"`
	Admin      AdminConfig        `toml:"admin"`
	Transports []transport.Config `toml:"transport"`
	Devices    []DeviceConfig     `toml:"device"`
	Bridges    []BridgeConfig     `toml:"bridge"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// AdminConfig enables the HTTP admin surface when Addr is set.
type AdminConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

type DeviceConfig struct {
	Name      string                      `toml:"name"`
	Transport string                      `toml:"transport"`
	Protocol  Protocol                    `toml:"protocol"`
	Checksum  string                      `toml:"checksum"`
	RawLog    *observability.RawLogConfig `toml:"raw_log"`
}

// BridgeConfig forwards one SeaTalk device, translated, to a transport.
type BridgeConfig struct {
	Name   string `toml:"name"`
	From   string `toml:"from"`
	To     string `toml:"to"`
	Talker string `toml:"talker"`
}

func Default() Gateway {
	return Gateway{
		Name:  "seabridge",
		Log:   LogConfig{Level: "info"},
		Admin: AdminConfig{Addr: ":9110"},
	}
}

// Load parses path over Default and validates the result.
func Load(path string) (Gateway, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Gateway{}, err
	}
	if err := Validate(cfg); err != nil {
		return Gateway{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Gateway) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("gateway config missing name")
	}
	transports := make(map[string]bool, len(cfg.Transports))
	for i, tc := range cfg.Transports {
		if strings.TrimSpace(tc.Name) == "" {
			return fmt.Errorf("transport[%d] invalid: name is required", i)
		}
		if transports[tc.Name] {
			return fmt.Errorf("transport[%d] invalid: duplicate name %q", i, tc.Name)
		}
		if err := tc.Validate(); err != nil {
			return fmt.Errorf("transport[%d] invalid: %w", i, err)
		}
		transports[tc.Name] = true
	}

	owned := make(map[string]string, len(cfg.Devices))
	devices := make(map[string]Protocol, len(cfg.Devices))
	for i, dc := range cfg.Devices {
		if err := ValidateDevice(dc); err != nil {
			return fmt.Errorf("device[%d] invalid: %w", i, err)
		}
		if _, dup := devices[dc.Name]; dup {
			return fmt.Errorf("device[%d] invalid: duplicate name %q", i, dc.Name)
		}
		if !transports[dc.Transport] {
			return fmt.Errorf("device[%d] invalid: unknown transport %q", i, dc.Transport)
		}
		if other, taken := owned[dc.Transport]; taken {
			return fmt.Errorf("device[%d] invalid: transport %q already owned by device %q", i, dc.Transport, other)
		}
		owned[dc.Transport] = dc.Name
		devices[dc.Name] = dc.Protocol
	}

	for i, bc := range cfg.Bridges {
		if strings.TrimSpace(bc.Name) == "" {
			return fmt.Errorf("bridge[%d] invalid: name is required", i)
		}
		proto, ok := devices[bc.From]
		if !ok {
			return fmt.Errorf("bridge[%d] invalid: unknown device %q", i, bc.From)
		}
		if proto != ProtocolSeaTalk {
			return fmt.Errorf("bridge[%d] invalid: device %q is not seatalk", i, bc.From)
		}
		if !transports[bc.To] {
			return fmt.Errorf("bridge[%d] invalid: unknown transport %q", i, bc.To)
		}
		if dev, taken := owned[bc.To]; taken {
			return fmt.Errorf("bridge[%d] invalid: transport %q is owned by device %q", i, bc.To, dev)
		}
	}
	return nil
}

func ValidateDevice(dc DeviceConfig) error {
	if strings.TrimSpace(dc.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(dc.Transport) == "" {
		return fmt.Errorf("transport is required")
	}
	switch dc.Protocol {
	case ProtocolSeaTalk:
		if _, err := frame.ParseChecksum(dc.Checksum); err != nil {
			return err
		}
	case ProtocolNMEA:
		if dc.Checksum != "" {
			return fmt.Errorf("checksum applies to seatalk devices only")
		}
	default:
		return fmt.Errorf("unknown protocol %q", dc.Protocol)
	}
	if dc.RawLog != nil && strings.TrimSpace(dc.RawLog.Path) == "" {
		return fmt.Errorf("raw_log requires a path")
	}
	return nil
}
