package seatalk

import (
	"errors"
	"fmt"

	"github.com/danmuck/seabridge/internal/protocol"
	"github.com/danmuck/seabridge/internal/protocol/frame"
)

// Codec converts between wire frames and datagrams. The zero value is not
// usable; build one with NewCodec. A Codec is safe for concurrent use.
type Codec struct {
	checksum frame.Checksum
}

type Option func(*Codec)

// WithChecksum appends and verifies a trailing check byte on every frame.
func WithChecksum(cs frame.Checksum) Option {
	return func(c *Codec) {
		c.checksum = cs
	}
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{checksum: frame.NoChecksum}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Checksum() frame.Checksum {
	return c.checksum
}

// ExpectedLen returns the full frame length for a supported command,
// including any checksum byte.
func (c *Codec) ExpectedLen(cmd Command) (int, bool) {
	def, ok := registry[cmd]
	if !ok {
		return 0, false
	}
	return frame.HeaderLen + def.dataLen + c.checksum.Size(), true
}

// Decode turns one complete frame into a datagram. Every failure is a
// *protocol.DecodeError scoped to this frame.
func (c *Codec) Decode(raw []byte) (Datagram, error) {
	if len(raw) < frame.HeaderLen {
		return nil, protocol.Errorf(protocol.ErrInsufficientData, firstByte(raw), "got %d bytes, need at least %d", len(raw), frame.HeaderLen)
	}
	cmd := Command(raw[0])
	def, ok := registry[cmd]
	if !ok {
		return nil, protocol.Errorf(protocol.ErrUnrecognizedCommand, raw[0], "no dispatch entry")
	}

	want := frame.HeaderLen + def.dataLen
	declared := frame.DeclaredLen(raw[1])
	switch {
	case declared < want:
		return nil, protocol.Errorf(protocol.ErrInsufficientData, raw[0], "%s declares %d bytes, needs %d", def.name, declared, want)
	case declared > want:
		return nil, protocol.Errorf(protocol.ErrExcessData, raw[0], "%s declares %d bytes, takes %d", def.name, declared, want)
	}

	total := want + c.checksum.Size()
	switch {
	case len(raw) < total:
		return nil, protocol.Errorf(protocol.ErrInsufficientData, raw[0], "%s got %d of %d bytes", def.name, len(raw), total)
	case len(raw) > total:
		return nil, protocol.Errorf(protocol.ErrExcessData, raw[0], "%s got %d bytes, frame is %d", def.name, len(raw), total)
	}

	f, err := frame.Split(raw, c.checksum)
	if err != nil {
		return nil, err
	}
	d, err := def.decode(f.Nibble(), f.Data)
	if err != nil {
		return nil, asDecodeError(err, raw[0])
	}
	return d, nil
}

// Encode renders d as a complete frame.
func (c *Codec) Encode(d Datagram) ([]byte, error) {
	if d == nil {
		return nil, protocol.Errorf(protocol.ErrDataValidation, 0, "nil datagram")
	}
	cmd := d.Command()
	def, ok := registry[cmd]
	if !ok {
		return nil, protocol.Errorf(protocol.ErrUnrecognizedCommand, byte(cmd), "no dispatch entry")
	}
	nibble, data, err := d.encode()
	if err != nil {
		return nil, asDecodeError(err, byte(cmd))
	}
	if len(data) != def.dataLen {
		return nil, fmt.Errorf("seatalk: %s encoded %d data bytes, want %d", def.name, len(data), def.dataLen)
	}
	attr, err := frame.Attribute(nibble, len(data))
	if err != nil {
		return nil, protocol.Errorf(protocol.ErrDataValidation, byte(cmd), "%v", err)
	}
	return frame.Frame{Command: byte(cmd), Attribute: attr, Data: data}.Bytes(c.checksum), nil
}

func asDecodeError(err error, cmd byte) error {
	var de *protocol.DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &protocol.DecodeError{
		Kind:    protocol.ErrDataValidation,
		Command: cmd,
		Detail:  trimKind(err, protocol.ErrDataValidation),
	}
}

// trimKind drops the repeated "kind: " prefix from a wrapped detail.
func trimKind(err, kind error) string {
	msg, prefix := err.Error(), kind.Error()+": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func firstByte(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
