// Package device turns a transport byte stream into a queue of decoded
// datagrams and encodes outbound datagrams back onto the transport.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/seabridge/internal/observability"
	"github.com/danmuck/seabridge/internal/protocol"
	"github.com/danmuck/seabridge/internal/transport"
)

// QueueCapacity bounds the decoded datagram queue.
const QueueCapacity = 1000

var (
	// ErrStopped is returned by Receive once the loop ended and the queue
	// is drained, and by Start after Stop.
	ErrStopped     = errors.New("device: stopped")
	ErrStarted     = errors.New("device: already started")
	errorRetryWait = 100 * time.Millisecond
)

// Codec reads one frame from a transport and converts it both ways.
//
// Next returns the raw frame alongside the decode result whenever a complete
// frame was read, including when decoding it failed.
type Codec[D any] interface {
	Next(ctx context.Context, t transport.Transport) (D, []byte, error)
	Encode(d D) ([]byte, error)
	// Label names d for logs and metrics.
	Label(d D) string
}

// Device owns one transport and one read-decode loop.
type Device[D any] struct {
	name  string
	t     transport.Transport
	codec Codec[D]
	out   chan D
	raw   io.Writer
	log   zerolog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	stopErr error
}

func New[D any](name string, t transport.Transport, codec Codec[D]) *Device[D] {
	return &Device[D]{
		name:  name,
		t:     t,
		codec: codec,
		out:   make(chan D, QueueCapacity),
		log:   log.With().Str("device", name).Str("transport", t.String()).Logger(),
		done:  make(chan struct{}),
	}
}

// WithRawLog records every complete inbound frame to w. It must be called
// before Start.
func (d *Device[D]) WithRawLog(w io.Writer) *Device[D] {
	d.raw = w
	return d
}

func (d *Device[D]) Name() string {
	return d.name
}

func (d *Device[D]) Transport() transport.Transport {
	return d.t
}

// Start initializes the transport and launches the loop. Initialize errors
// are returned unchanged.
func (d *Device[D]) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	if d.started {
		return ErrStarted
	}
	if err := d.t.Initialize(ctx); err != nil {
		return err
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.started = true
	go d.run(loopCtx)
	d.log.Info().Msg("device started")
	return nil
}

// Receive returns the oldest decoded datagram.
func (d *Device[D]) Receive(ctx context.Context) (D, error) {
	var zero D
	select {
	case v, ok := <-d.out:
		if !ok {
			return zero, ErrStopped
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Datagrams exposes the output queue. It is closed when the loop exits.
func (d *Device[D]) Datagrams() <-chan D {
	return d.out
}

// Pending is the number of queued datagrams.
func (d *Device[D]) Pending() int {
	return len(d.out)
}

// Send encodes v and writes it to the transport.
func (d *Device[D]) Send(ctx context.Context, v D) error {
	raw, err := d.codec.Encode(v)
	if err != nil {
		return err
	}
	return d.t.Write(ctx, raw)
}

// Stop ends the loop, waits for it and cancels the transport. Later calls
// return the first result.
func (d *Device[D]) Stop() error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return d.stopErr
	}
	d.stopped = true
	started := d.started
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()

	// Cancel first so a loop blocked inside Read is released.
	err := d.t.Cancel()
	if started {
		<-d.done
	} else {
		close(d.out)
		close(d.done)
	}

	d.mu.Lock()
	d.stopErr = err
	d.mu.Unlock()
	d.log.Info().Msg("device stopped")
	return err
}

// Done is closed once the loop has exited.
func (d *Device[D]) Done() <-chan struct{} {
	return d.done
}

func (d *Device[D]) run(ctx context.Context) {
	defer close(d.done)
	defer close(d.out)
	for {
		v, raw, err := d.codec.Next(ctx, d.t)
		if len(raw) > 0 {
			d.record(raw)
		}
		if ctx.Err() != nil {
			return
		}
		switch {
		case err == nil:
			d.publish(v)
		case errors.Is(err, io.EOF):
			d.log.Info().Msg("stream ended")
			return
		case errors.Is(err, transport.ErrClosed), errors.Is(err, context.Canceled):
			return
		case protocol.IsRecoverable(err):
			kind := protocol.KindOf(err)
			d.log.Warn().Err(err).Str("kind", kind).Msg("frame discarded")
			observability.RecordDecodeError(d.name, kind)
		default:
			d.log.Error().Err(err).Msg("read failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorRetryWait):
			}
		}
	}
}

func (d *Device[D]) publish(v D) {
	label := d.codec.Label(v)
	select {
	case d.out <- v:
		observability.RecordDatagram(d.name, label)
		d.log.Debug().Str("datagram", label).Msg("decoded")
	default:
		d.log.Warn().
			Str("datagram", label).
			Int("capacity", cap(d.out)).
			Msg("datagram queue full, dropping")
		observability.RecordQueueDrop(d.name, "datagrams")
	}
}

func (d *Device[D]) record(raw []byte) {
	if d.raw == nil {
		return
	}
	if _, err := d.raw.Write(raw); err != nil {
		d.log.Warn().Err(err).Msg("raw log write failed")
	}
}

func (d *Device[D]) String() string {
	return fmt.Sprintf("%s (%s)", d.name, d.t)
}
