package transport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// SerialPort is the blocking driver surface the serial backend needs.
type SerialPort interface {
	io.ReadWriteCloser
	Flush() error
}

// SerialOpener opens a driver port; tests substitute a fake.
type SerialOpener func(cfg *serial.Config) (SerialPort, error)

func openTarm(cfg *serial.Config) (SerialPort, error) {
	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Serial drives a hardware port. Every driver call runs on the worker pool
// and Read polls with the driver read timeout, so no call outlives Cancel by
// more than one timeout.
type Serial struct {
	base
	cfg     *serial.Config
	workers int
	open    SerialOpener
	port    SerialPort
	pool    *workerPool
}

func NewSerial(cfg Config) (*Serial, error) {
	return NewSerialWithOpener(cfg, openTarm)
}

func NewSerialWithOpener(cfg Config, open SerialOpener) (*Serial, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("transport: serial transport requires a device")
	}
	scfg, err := cfg.serialConfig()
	if err != nil {
		return nil, err
	}
	cs, err := lookupCharset(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	workers := cfg.SerialWorkers
	if workers <= 0 {
		workers = defaultSerialWorkers
	}
	return &Serial{
		base:    newBase(cfg.identity(), cs),
		cfg:     scfg,
		workers: workers,
		open:    open,
	}, nil
}

func (s *Serial) Initialize(ctx context.Context) error {
	first, err := s.begin()
	if err != nil || !first {
		return err
	}
	pool := newWorkerPool(s.workers)
	port, err := submit(ctx, pool, func() portResult {
		p, err := s.open(s.cfg)
		return portResult{port: p, err: err}
	})
	if err == nil {
		err = port.err
	}
	if err != nil {
		_ = pool.close()
		return fmt.Errorf("%w: open %s: %v", ErrResourceUnavailable, s.cfg.Name, err)
	}
	s.port = port.port
	s.pool = pool
	s.initialized.Store(true)
	s.log.Info().Int("baud", s.cfg.Baud).Str("parity", string(rune(s.cfg.Parity))).Msg("serial port open")
	return nil
}

type portResult struct {
	port SerialPort
	err  error
}

type ioResult struct {
	data []byte
	n    int
	err  error
}

// Read polls the driver until at least one byte arrives. A driver timeout
// with no data is not an error.
func (s *Serial) Read(ctx context.Context, n int) ([]byte, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	if err := s.ready(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 1
	}
	for {
		res, err := submit(ctx, s.pool, func() ioResult {
			buf := make([]byte, n)
			k, err := s.port.Read(buf)
			return ioResult{data: buf[:k], err: err}
		})
		if err != nil {
			return nil, err
		}
		if len(res.data) > 0 {
			return s.inbound(res.data), nil
		}
		if s.closed.Load() {
			return nil, ErrClosed
		}
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return nil, fmt.Errorf("transport: serial read: %w", res.err)
		}
	}
}

func (s *Serial) Write(ctx context.Context, data []byte) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	if err := s.ready(); err != nil {
		return err
	}
	payload := s.outbound(data)
	for len(payload) > 0 {
		res, err := submit(ctx, s.pool, func() ioResult {
			k, err := s.port.Write(payload)
			return ioResult{n: k, err: err}
		})
		if err != nil {
			return err
		}
		if res.err != nil {
			return fmt.Errorf("transport: serial write: %w", res.err)
		}
		if res.n == 0 {
			return fmt.Errorf("transport: serial write: %w", io.ErrShortWrite)
		}
		payload = payload[res.n:]
	}
	return nil
}

// Flush discards both driver buffers.
func (s *Serial) Flush(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	if err := s.ready(); err != nil {
		return err
	}
	res, err := submit(ctx, s.pool, func() ioResult {
		return ioResult{err: s.port.Flush()}
	})
	if err != nil {
		return err
	}
	return res.err
}

// Cancel closes the port, which aborts a blocked driver call, then waits
// for the workers.
func (s *Serial) Cancel() error {
	if !s.markClosed() {
		return nil
	}
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	_ = s.pool.close()
	s.log.Info().Msg("serial port closed")
	return err
}
