package transport

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tarm/serial"

	"github.com/danmuck/seabridge/internal/testutil/testlog"
)

// fakePort mimics a driver with a read timeout: Read returns 0 bytes when
// nothing arrived within the poll interval.
type fakePort struct {
	mu      sync.Mutex
	inbound []byte
	written []byte
	flushes int
	closed  bool
}

func (p *fakePort) feed(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inbound = append(p.inbound, b...)
}

func (p *fakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, io.EOF
	}
	if len(p.inbound) == 0 {
		p.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		return 0, nil
	}
	n := copy(buf, p.inbound)
	p.inbound = p.inbound[n:]
	p.mu.Unlock()
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("port closed")
	}
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushes++
	p.inbound = nil
	return nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func newFakeSerial(t *testing.T, cfg Config) (*Serial, *fakePort, *serial.Config) {
	t.Helper()
	port := &fakePort{}
	var opened *serial.Config
	s, err := NewSerialWithOpener(cfg, func(c *serial.Config) (SerialPort, error) {
		opened = c
		return port, nil
	})
	if err != nil {
		t.Fatalf("new serial: %v", err)
	}
	if err := s.Initialize(testContext(t)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { _ = s.Cancel() })
	return s, port, opened
}

func TestSerialOpensWithParsedSettings(t *testing.T) {
	testlog.Start(t)
	_, _, opened := newFakeSerial(t, Config{
		Kind:     KindSerial,
		Device:   "/dev/ttyUSB0",
		Baud:     4800,
		ByteSize: 8,
		StopBits: 2,
		Parity:   "Even",
	})
	if opened.Name != "/dev/ttyUSB0" || opened.Baud != 4800 || opened.Size != 8 {
		t.Fatalf("unexpected config: %+v", opened)
	}
	if opened.Parity != serial.ParityEven || opened.StopBits != serial.Stop2 {
		t.Fatalf("parity=%c stop=%d", opened.Parity, opened.StopBits)
	}
}

func TestSerialReadWaitsThroughTimeouts(t *testing.T) {
	testlog.Start(t)
	ctx := testContext(t)
	s, port, _ := newFakeSerial(t, Config{Kind: KindSerial, Device: "/dev/fake"})

	go func() {
		time.Sleep(30 * time.Millisecond)
		port.feed([]byte{0x00, 0x02, 0x00, 0xDB, 0x02})
	}()
	got, err := s.Read(ctx, 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, []byte{0x00, 0x02, 0x00, 0xDB, 0x02}) {
		t.Fatalf("got=% X", got)
	}
}

func TestSerialWriteAndFlush(t *testing.T) {
	testlog.Start(t)
	ctx := testContext(t)
	s, port, _ := newFakeSerial(t, Config{Kind: KindSerial, Device: "/dev/fake"})

	if err := s.Write(ctx, []byte{0x91, 0x00, 0x03}); err != nil {
		t.Fatalf("write: %v", err)
	}
	port.feed([]byte("stale"))
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	port.mu.Lock()
	defer port.mu.Unlock()
	if !bytes.Equal(port.written, []byte{0x91, 0x00, 0x03}) {
		t.Fatalf("written=% X", port.written)
	}
	if port.flushes != 1 || len(port.inbound) != 0 {
		t.Fatalf("flushes=%d inbound=%q", port.flushes, port.inbound)
	}
}

func TestSerialCancelAbortsBlockedRead(t *testing.T) {
	testlog.Start(t)
	ctx := testContext(t)
	s, port, _ := newFakeSerial(t, Config{Kind: KindSerial, Device: "/dev/fake"})

	errc := make(chan error, 1)
	go func() {
		_, err := s.Read(ctx, 1)
		errc <- err
	}()
	time.Sleep(30 * time.Millisecond)
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("read not aborted by cancel")
	}
	port.mu.Lock()
	closed := port.closed
	port.mu.Unlock()
	if !closed {
		t.Fatalf("port not closed")
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
}

func TestSerialOpenFailureIsResourceUnavailable(t *testing.T) {
	testlog.Start(t)
	s, err := NewSerialWithOpener(Config{Kind: KindSerial, Device: "/dev/missing"}, func(*serial.Config) (SerialPort, error) {
		return nil, errors.New("no such device")
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Initialize(testContext(t)); !errors.Is(err, ErrResourceUnavailable) {
		t.Fatalf("expected ErrResourceUnavailable, got %v", err)
	}
}
