package device

import (
	"context"

	"github.com/danmuck/seabridge/internal/protocol/frame"
	"github.com/danmuck/seabridge/internal/protocol/seatalk"
	"github.com/danmuck/seabridge/internal/transport"
)

// SeaTalk frames the stream by each frame's declared length, so an unknown
// command is consumed whole and the next read starts on a frame boundary.
type SeaTalk struct {
	codec *seatalk.Codec
}

func NewSeaTalk(codec *seatalk.Codec) *SeaTalk {
	if codec == nil {
		codec = seatalk.NewCodec()
	}
	return &SeaTalk{codec: codec}
}

func (s *SeaTalk) Next(ctx context.Context, t transport.Transport) (seatalk.Datagram, []byte, error) {
	raw, err := frame.ReadFrame(ctx, t, s.codec.Checksum())
	if err != nil {
		return nil, nil, err
	}
	d, err := s.codec.Decode(raw)
	return d, raw, err
}

func (s *SeaTalk) Encode(d seatalk.Datagram) ([]byte, error) {
	return s.codec.Encode(d)
}

func (s *SeaTalk) Label(d seatalk.Datagram) string {
	if d == nil {
		return "none"
	}
	return d.Command().String()
}

// NewSeaTalkDevice pairs a transport with a SeaTalk codec.
func NewSeaTalkDevice(name string, t transport.Transport, codec *seatalk.Codec) *Device[seatalk.Datagram] {
	return New[seatalk.Datagram](name, t, NewSeaTalk(codec))
}
