package gateway

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/seabridge/internal/config"
	"github.com/danmuck/seabridge/internal/device"
	"github.com/danmuck/seabridge/internal/protocol/nmea"
	"github.com/danmuck/seabridge/internal/protocol/seatalk"
	"github.com/danmuck/seabridge/internal/testutil/testlog"
	"github.com/danmuck/seabridge/internal/transport"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func replayConfig(t *testing.T, capture []byte) (config.Gateway, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Name = "replay"
	cfg.Transports = []transport.Config{
		{Name: "capture", Kind: transport.KindFile, Path: writeFile(t, dir, "capture.bin", capture)},
		{Name: "out", Kind: transport.KindFile, Path: writeFile(t, dir, "out.nmea", nil)},
	}
	cfg.Devices = []config.DeviceConfig{{
		Name:      "instruments",
		Transport: "capture",
		Protocol:  config.ProtocolSeaTalk,
	}}
	cfg.Bridges = []config.BridgeConfig{{Name: "st-to-nmea", From: "instruments", To: "out"}}
	return cfg, filepath.Join(dir, "out.nmea")
}

func TestGatewayReplaysCaptureIntoSentences(t *testing.T) {
	testlog.Start(t)
	capture := []byte{
		0x00, 0x02, 0x00, 0xDB, 0x02, // depth 73.1 ft
		0xFF, 0x03, 0x00, 0x00, 0x00, 0x00, // unknown command
		0x20, 0x01, 0x32, 0x00, // speed 5.0 kn
		0x91, 0x00, 0x03, // rudder gain, not translated
	}
	cfg, outPath := replayConfig(t, capture)
	gw, err := New(cfg)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- gw.Run(testContext(t)) }()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("gateway did not finish after replay ended")
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := nmea.New("II", "DBT", "73.1", "f", "22.28", "M", "12.18", "F").String() +
		nmea.New("II", "VHW", "", "T", "", "M", "5.00", "N", "9.26", "K").String()
	if string(out) != want {
		t.Fatalf("output=%q want=%q", out, want)
	}

	st := gw.Status()
	if st.Running || len(st.Bridges) != 1 {
		t.Fatalf("status=%+v", st)
	}
	if b := st.Bridges[0]; b.Received != 3 || b.Forwarded != 2 || b.Failed != 0 {
		t.Fatalf("bridge status=%+v", b)
	}
	if err := gw.Run(testContext(t)); !errors.Is(err, ErrAlreadyRan) {
		t.Fatalf("second run got %v", err)
	}
}

func TestGatewayStopsOnContextCancel(t *testing.T) {
	testlog.Start(t)
	cfg := config.Default()
	cfg.Transports = []transport.Config{
		{Name: "bus", Kind: transport.KindTCPServer, Host: "127.0.0.1"},
		{Name: "out", Kind: transport.KindTCPServer, Host: "127.0.0.1"},
	}
	cfg.Devices = []config.DeviceConfig{{Name: "st", Transport: "bus", Protocol: config.ProtocolSeaTalk}}
	cfg.Bridges = []config.BridgeConfig{{Name: "b", From: "st", To: "out"}}
	gw, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- gw.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for !gw.Status().Running {
		if time.Now().After(deadline) {
			t.Fatalf("gateway never reported running")
		}
		time.Sleep(10 * time.Millisecond)
	}
	st := gw.Status()
	if len(st.Sinks) != 1 || st.Sinks[0].Peers == nil || *st.Sinks[0].Peers != 0 {
		t.Fatalf("sinks=%+v", st.Sinks)
	}
	if len(st.Devices) != 1 || !st.Devices[0].Running || st.Devices[0].Protocol != "seatalk" {
		t.Fatalf("devices=%+v", st.Devices)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("gateway did not stop")
	}
	if gw.Status().Devices[0].Running {
		t.Fatalf("device still reported running")
	}
}

func TestGatewayRunFailsOnUnavailableResource(t *testing.T) {
	testlog.Start(t)
	cfg, _ := replayConfig(t, nil)
	cfg.Transports[0].Path = filepath.Join(t.TempDir(), "missing.bin")
	gw, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = gw.Run(testContext(t))
	if !errors.Is(err, transport.ErrResourceUnavailable) || !strings.Contains(err.Error(), "instruments") {
		t.Fatalf("expected unavailable resource for device, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	cfg, _ := replayConfig(t, nil)
	cfg.Bridges[0].From = "nobody"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected validation error")
	}
}

type scriptedSource struct {
	items []seatalk.Datagram
	end   error
}

func (s *scriptedSource) Receive(ctx context.Context) (seatalk.Datagram, error) {
	if len(s.items) == 0 {
		return nil, s.end
	}
	d := s.items[0]
	s.items = s.items[1:]
	return d, nil
}

type recordingSink struct {
	mu     sync.Mutex
	lines  []string
	failOn string
}

func (s *recordingSink) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && strings.Contains(string(data), s.failOn) {
		return errors.New("sink refused")
	}
	s.lines = append(s.lines, string(data))
	return nil
}

func (s *recordingSink) String() string { return "recording" }

func TestBridgeCountsFailuresAndEndsWithSource(t *testing.T) {
	testlog.Start(t)
	src := &scriptedSource{
		items: []seatalk.Datagram{
			seatalk.Depth{Feet: 10},
			seatalk.Speed{Knots: 4},
			seatalk.CancelMOB{},
		},
		end: device.ErrStopped,
	}
	sink := &recordingSink{failOn: "VHW"}
	b := NewBridge("test", src, sink, "SD")
	if err := b.Run(testContext(t)); err != nil {
		t.Fatalf("run: %v", err)
	}
	st := b.Status()
	if st.Received != 3 || st.Forwarded != 1 || st.Failed != 1 || st.Sink != "recording" {
		t.Fatalf("status=%+v", st)
	}
	if len(sink.lines) != 1 || !strings.HasPrefix(sink.lines[0], "$SDDBT,10.0,f,") {
		t.Fatalf("lines=%q", sink.lines)
	}
}

func TestBridgeReturnsSourceError(t *testing.T) {
	testlog.Start(t)
	boom := errors.New("boom")
	b := NewBridge("test", &scriptedSource{end: boom}, &recordingSink{}, "")
	if err := b.Run(testContext(t)); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}
