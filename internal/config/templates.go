package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "gateway":
		return gatewayTemplate, nil
	case "replay":
		return replayTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const gatewayTemplate = `name = "seabridge"

[log]
level = "info"

[admin]
addr = ":9110"
cors_origins = ["http://localhost:3000"]

[[transport]]
name = "seatalk-bus"
kind = "serial"
device = "/dev/ttyUSB0"
baud = 4800
byte_size = 8
stop_bits = 1
parity = "Space"

[[transport]]
name = "nmea-out"
kind = "server"
host = "0.0.0.0"
port = 10110
encoding = "ISO-8859-1"

[[transport]]
name = "gps"
kind = "client"
host = "192.168.1.20"
port = 2000
backoff_ms = 1000

[[device]]
name = "instruments"
transport = "seatalk-bus"
protocol = "seatalk"
checksum = "none"

[device.raw_log]
path = "captures/seatalk.bin"
max_size_mb = 16

[[device]]
name = "gps"
transport = "gps"
protocol = "nmea"

[[bridge]]
name = "instruments-to-nmea"
from = "instruments"
to = "nmea-out"
talker = "II"
`

const replayTemplate = `name = "seabridge-replay"

[log]
level = "debug"

[admin]
addr = ""

[[transport]]
name = "capture"
kind = "file"
path = "captures/seatalk.bin"

[[transport]]
name = "console"
kind = "console"

[[device]]
name = "replay"
transport = "capture"
protocol = "seatalk"

[[bridge]]
name = "replay-to-console"
from = "replay"
to = "console"
`
