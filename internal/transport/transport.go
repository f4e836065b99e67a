package transport

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrResourceUnavailable means Initialize could not bind, open, or find
	// the backing resource.
	ErrResourceUnavailable = errors.New("transport: resource unavailable")
	// ErrClosed is returned by every operation after Cancel.
	ErrClosed = errors.New("transport: closed")
	// ErrNotInitialized is returned by I/O before Initialize.
	ErrNotInitialized = errors.New("transport: not initialized")
)

// Transport is a byte-stream source and sink over one backend.
//
// Read and Write share one exclusion gate per instance: at most one of them
// is in flight at any time, and each holds the gate end-to-end.
type Transport interface {
	// Initialize acquires the backing resource. Failures wrap
	// ErrResourceUnavailable.
	Initialize(ctx context.Context) error
	// Read returns up to n bytes, blocking until at least one is available.
	Read(ctx context.Context, n int) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	// Flush discards buffered-but-unsent state where the backend has any.
	Flush(ctx context.Context) error
	// Cancel releases the resource and waits for owned goroutines. It is
	// idempotent and safe to call from any goroutine.
	Cancel() error
	String() string
}

// base carries what every backend shares: identity, the exclusion gate,
// the optional charset and the lifecycle flags.
type base struct {
	name        string
	gate        *semaphore.Weighted
	charset     *charset
	initialized atomic.Bool
	closed      atomic.Bool
	log         zerolog.Logger
}

func newBase(name string, cs *charset) base {
	return base{
		name:    name,
		gate:    semaphore.NewWeighted(1),
		charset: cs,
		log:     log.With().Str("transport", name).Logger(),
	}
}

func (b *base) String() string {
	return b.name
}

// acquire takes the exclusion gate or gives up with ctx.
func (b *base) acquire(ctx context.Context) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := b.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	if b.closed.Load() {
		b.release()
		return ErrClosed
	}
	return nil
}

func (b *base) release() {
	b.gate.Release(1)
}

// ready is checked under the gate by every I/O call.
func (b *base) ready() error {
	if b.closed.Load() {
		return ErrClosed
	}
	if !b.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

// begin reports whether the caller should acquire the resource: false with
// a nil error means Initialize already ran.
func (b *base) begin() (bool, error) {
	if b.closed.Load() {
		return false, ErrClosed
	}
	return !b.initialized.Load(), nil
}

// markClosed reports whether this call performed the close.
func (b *base) markClosed() bool {
	return b.closed.CompareAndSwap(false, true)
}

// inbound converts raw wire bytes for the caller. A charset failure is
// logged and yields an empty chunk.
func (b *base) inbound(raw []byte) []byte {
	if b.charset == nil || len(raw) == 0 {
		return raw
	}
	out, err := b.charset.decode(raw)
	if err != nil {
		b.log.Warn().Err(err).Str("charset", b.charset.name).Int("bytes", len(raw)).Msg("inbound chunk not decodable, discarding")
		return []byte{}
	}
	return out
}

// outbound converts caller data for the wire. A charset failure is logged
// and yields an empty payload so the stream is never corrupted.
func (b *base) outbound(data []byte) []byte {
	if b.charset == nil || len(data) == 0 {
		return data
	}
	out, err := b.charset.encode(data)
	if err != nil {
		b.log.Warn().Err(err).Str("charset", b.charset.name).Int("bytes", len(data)).Msg("outbound data not encodable, sending empty payload")
		return []byte{}
	}
	return out
}

// take returns at most n bytes of chunk and the remainder.
func take(chunk []byte, n int) ([]byte, []byte) {
	if n <= 0 || len(chunk) <= n {
		return chunk, nil
	}
	return chunk[:n], chunk[n:]
}
