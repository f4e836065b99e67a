package config

import (
	"github.com/danmuck/seabridge/internal/observability"
	"github.com/danmuck/seabridge/internal/protocol/frame"
	"github.com/danmuck/seabridge/internal/protocol/seatalk"
	"github.com/danmuck/seabridge/internal/transport"
)

// TransportByName finds a configured transport.
func (g Gateway) TransportByName(name string) (transport.Config, bool) {
	for _, tc := range g.Transports {
		if tc.Name == name {
			return tc, true
		}
	}
	return transport.Config{}, false
}

// SeaTalkCodec builds the frame codec a seatalk device asks for.
func (dc DeviceConfig) SeaTalkCodec() (*seatalk.Codec, error) {
	cs, err := frame.ParseChecksum(dc.Checksum)
	if err != nil {
		return nil, err
	}
	return seatalk.NewCodec(seatalk.WithChecksum(cs)), nil
}

// RawLogSettings fills unset rotation fields with defaults.
func (dc DeviceConfig) RawLogSettings() (observability.RawLogConfig, bool) {
	if dc.RawLog == nil {
		return observability.RawLogConfig{}, false
	}
	out := observability.DefaultRawLogConfig(dc.RawLog.Path)
	if dc.RawLog.MaxSizeMB > 0 {
		out.MaxSizeMB = dc.RawLog.MaxSizeMB
	}
	if dc.RawLog.MaxBackups > 0 {
		out.MaxBackups = dc.RawLog.MaxBackups
	}
	if dc.RawLog.MaxAgeDays > 0 {
		out.MaxAgeDays = dc.RawLog.MaxAgeDays
	}
	out.Compress = dc.RawLog.Compress
	return out, true
}
