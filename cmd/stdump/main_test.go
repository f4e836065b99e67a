package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/seabridge/internal/testutil/testlog"
)

func capture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	return path
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestDumpSeaTalkWithTranslation(t *testing.T) {
	testlog.Start(t)
	path := capture(t, []byte{0x00, 0x02, 0x00, 0xDB, 0x02, 0x36, 0x00, 0x01})
	var out bytes.Buffer
	opts := options{input: path, protocol: "seatalk", checksum: "none", translate: true, talker: "SD"}
	if err := run(testContext(t), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\r\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%q", lines)
	}
	if !strings.HasPrefix(lines[0], "depth") || !strings.Contains(lines[0], "73.1") {
		t.Fatalf("depth line=%q", lines[0])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "$SDDBT,73.1,f,") {
		t.Fatalf("translation line=%q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "cancel_mob") {
		t.Fatalf("mob line=%q", lines[2])
	}
}

func TestDumpNMEA(t *testing.T) {
	testlog.Start(t)
	path := capture(t, []byte("$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A\r\n"))
	var out bytes.Buffer
	if err := run(testContext(t), options{input: path, protocol: "nmea"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "GPRMC known") {
		t.Fatalf("output=%q", out.String())
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	testlog.Start(t)
	path := capture(t, nil)
	if err := run(testContext(t), options{input: path, protocol: "nmea2000"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown protocol error")
	}
	if err := run(testContext(t), options{input: path, protocol: "seatalk", checksum: "crc"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown checksum error")
	}
	if err := run(testContext(t), options{input: filepath.Join(t.TempDir(), "absent"), protocol: "seatalk"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected missing input error")
	}
}
