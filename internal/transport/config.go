package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
)

type Kind string

const (
	KindConsole   Kind = "console"
	KindTCPServer Kind = "server"
	KindTCPClient Kind = "client"
	KindSerial    Kind = "serial"
	KindFile      Kind = "file"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindConsole, KindTCPServer, KindTCPClient, KindSerial, KindFile:
		return k, nil
	case "tcp-server", "listen":
		return KindTCPServer, nil
	case "tcp-client", "tcp", "connect":
		return KindTCPClient, nil
	default:
		return "", fmt.Errorf("transport: unknown kind %q", raw)
	}
}

// Config describes one transport instance. Only the fields of its Kind
// are read.
type Config struct {
	Name string `toml:"name"`
	Kind Kind   `toml:"kind"`

	// server binds Host:Port (Host may be empty); client dials it.
	Host string `toml:"host"`
	Port int    `toml:"port"`

	Device   string `toml:"device"`
	Baud     int    `toml:"baud"`
	ByteSize int    `toml:"byte_size"`
	// StopBits is 1, 2, or 15 for one and a half.
	StopBits int `toml:"stop_bits"`
	// Parity is N/E/O/M/S or None/Even/Odd/Mark/Space.
	Parity string `toml:"parity"`

	Path string `toml:"path"`

	// Encoding is an IANA charset name applied to reads and writes.
	Encoding string `toml:"encoding"`

	ConnectTimeoutMS    int     `toml:"connect_timeout_ms"`
	BackoffMS           int     `toml:"backoff_ms"`
	BackoffMaxMS        int     `toml:"backoff_max_ms"`
	BackoffMultiplier   float64 `toml:"backoff_multiplier"`
	BackoffJitter       bool    `toml:"backoff_jitter"`
	SerialReadTimeoutMS int     `toml:"serial_read_timeout_ms"`
	SerialWorkers       int     `toml:"serial_workers"`
}

const (
	defaultConnectTimeout    = 5 * time.Second
	defaultSerialReadTimeout = 100 * time.Millisecond
	defaultSerialWorkers     = 2
	defaultBaud              = 4800
)

// New builds the backend named by cfg.Kind.
func New(cfg Config) (Transport, error) {
	kind, err := ParseKind(string(cfg.Kind))
	if err != nil {
		return nil, err
	}
	cfg.Kind = kind
	switch kind {
	case KindConsole:
		return NewConsole(cfg)
	case KindTCPServer:
		return NewServer(cfg)
	case KindTCPClient:
		return NewClient(cfg)
	case KindSerial:
		return NewSerial(cfg)
	case KindFile:
		return NewFile(cfg)
	default:
		return nil, fmt.Errorf("transport: unknown kind %q", cfg.Kind)
	}
}

// Validate checks the fields the kind needs.
func (c Config) Validate() error {
	kind, err := ParseKind(string(c.Kind))
	if err != nil {
		return err
	}
	switch kind {
	case KindTCPServer:
		if c.Port < 0 || c.Port > 65535 {
			return fmt.Errorf("transport: server port %d out of range", c.Port)
		}
	case KindTCPClient:
		if strings.TrimSpace(c.Host) == "" {
			return fmt.Errorf("transport: client requires host")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("transport: client port %d out of range", c.Port)
		}
	case KindSerial:
		if strings.TrimSpace(c.Device) == "" {
			return fmt.Errorf("transport: serial requires device")
		}
		if _, err := c.serialConfig(); err != nil {
			return err
		}
	case KindFile:
		if strings.TrimSpace(c.Path) == "" {
			return fmt.Errorf("transport: file requires path")
		}
	}
	if _, err := lookupCharset(c.Encoding); err != nil {
		return err
	}
	return nil
}

func (c Config) address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// identity is the String() of the built transport: kind plus address or path.
func (c Config) identity() string {
	kind := c.Kind
	if kind == "" {
		kind = KindConsole
	}
	var target string
	switch kind {
	case KindTCPServer, KindTCPClient:
		target = c.address()
	case KindSerial:
		target = c.Device
	case KindFile:
		target = c.Path
	}
	id := string(kind)
	if target != "" {
		id += " " + target
	}
	if c.Name != "" {
		id = c.Name + " (" + id + ")"
	}
	return id
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeoutMS > 0 {
		return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
	}
	return defaultConnectTimeout
}

func (c Config) backoff() BackoffConfig {
	b := DefaultBackoff()
	if c.BackoffMS > 0 {
		b.InitialDelay = time.Duration(c.BackoffMS) * time.Millisecond
	}
	if c.BackoffMaxMS > 0 {
		b.MaxDelay = time.Duration(c.BackoffMaxMS) * time.Millisecond
	}
	if c.BackoffMultiplier > 0 {
		b.Multiplier = c.BackoffMultiplier
	}
	b.Jitter = c.BackoffJitter
	return b
}

var parityNames = map[string]serial.Parity{
	"n": serial.ParityNone, "none": serial.ParityNone,
	"e": serial.ParityEven, "even": serial.ParityEven,
	"o": serial.ParityOdd, "odd": serial.ParityOdd,
	"m": serial.ParityMark, "mark": serial.ParityMark,
	"s": serial.ParitySpace, "space": serial.ParitySpace,
}

// ParseParity accepts a raw parity letter or its name, case-insensitively.
func ParseParity(raw string) (serial.Parity, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return serial.ParityNone, nil
	}
	p, ok := parityNames[key]
	if !ok {
		return 0, fmt.Errorf("transport: unknown parity %q", raw)
	}
	return p, nil
}

func parseStopBits(v int) (serial.StopBits, error) {
	switch v {
	case 0, 1:
		return serial.Stop1, nil
	case 2:
		return serial.Stop2, nil
	case 15:
		return serial.Stop1Half, nil
	default:
		return 0, fmt.Errorf("transport: stop bits %d not one of 1, 2, 15", v)
	}
}

func (c Config) serialConfig() (*serial.Config, error) {
	parity, err := ParseParity(c.Parity)
	if err != nil {
		return nil, err
	}
	stop, err := parseStopBits(c.StopBits)
	if err != nil {
		return nil, err
	}
	size := c.ByteSize
	if size == 0 {
		size = 8
	}
	if size < 5 || size > 8 {
		return nil, fmt.Errorf("transport: byte size %d outside 5..8", size)
	}
	baud := c.Baud
	if baud == 0 {
		baud = defaultBaud
	}
	timeout := defaultSerialReadTimeout
	if c.SerialReadTimeoutMS > 0 {
		timeout = time.Duration(c.SerialReadTimeoutMS) * time.Millisecond
	}
	return &serial.Config{
		Name:        c.Device,
		Baud:        baud,
		ReadTimeout: timeout,
		Size:        byte(size),
		Parity:      parity,
		StopBits:    stop,
	}, nil
}
