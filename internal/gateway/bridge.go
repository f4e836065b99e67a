package gateway

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/seabridge/internal/device"
	"github.com/danmuck/seabridge/internal/observability"
	"github.com/danmuck/seabridge/internal/protocol/seatalk"
	"github.com/danmuck/seabridge/internal/transport"
)

// Source yields decoded SeaTalk datagrams; *device.Device satisfies it.
type Source interface {
	Receive(ctx context.Context) (seatalk.Datagram, error)
}

// Sink accepts wire bytes; every transport satisfies it.
type Sink interface {
	Write(ctx context.Context, data []byte) error
	String() string
}

// Bridge drains a source, translates each datagram and writes the
// resulting sentences to a sink.
type Bridge struct {
	name       string
	from       Source
	to         Sink
	translator *Translator
	log        zerolog.Logger

	received  atomic.Uint64
	forwarded atomic.Uint64
	failed    atomic.Uint64
}

func NewBridge(name string, from Source, to Sink, talker string) *Bridge {
	return &Bridge{
		name:       name,
		from:       from,
		to:         to,
		translator: NewTranslator(talker),
		log:        log.With().Str("bridge", name).Str("sink", to.String()).Logger(),
	}
}

// Run returns nil when ctx ends, the sink closes or the source stops.
func (b *Bridge) Run(ctx context.Context) error {
	b.log.Info().Msg("bridge running")
	for {
		d, err := b.from.Receive(ctx)
		if err != nil {
			if errors.Is(err, device.ErrStopped) {
				b.log.Info().Msg("source stopped")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		b.received.Add(1)
		for _, s := range b.translator.Translate(d) {
			if err := b.to.Write(ctx, []byte(s.String())); err != nil {
				if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
					return nil
				}
				b.failed.Add(1)
				b.log.Warn().Err(err).Str("sentence", s.Type).Msg("write failed")
				continue
			}
			b.forwarded.Add(1)
			observability.RecordSentence(b.name, s.Type)
		}
	}
}

// BridgeStatus is a point-in-time view of a bridge's counters.
type BridgeStatus struct {
	Name      string `json:"name"`
	Sink      string `json:"sink"`
	Received  uint64 `json:"received"`
	Forwarded uint64 `json:"forwarded"`
	Failed    uint64 `json:"failed"`
}

func (b *Bridge) Status() BridgeStatus {
	return BridgeStatus{
		Name:      b.name,
		Sink:      b.to.String(),
		Received:  b.received.Load(),
		Forwarded: b.forwarded.Load(),
		Failed:    b.failed.Load(),
	}
}
