package frame

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/seabridge/internal/protocol"
)

const (
	// HeaderLen is the command byte plus the attribute byte.
	HeaderLen = 2
	// MinLen is the shortest legal frame: header plus one data byte.
	MinLen = 3
	// MaxLen is the longest legal frame without checksum.
	MaxLen = MinLen + 0x0F

	lengthMask = 0x0F
)

// Frame is one complete wire message split into its parts.
// Data excludes the header and any trailing checksum.
type Frame struct {
	Command   byte
	Attribute byte
	Data      []byte
}

// Nibble returns the attribute high nibble, which carries datagram data.
func (f Frame) Nibble() byte {
	return f.Attribute >> 4
}

// DeclaredLen returns the frame length announced by an attribute byte,
// excluding any checksum.
func DeclaredLen(attribute byte) int {
	return MinLen + int(attribute&lengthMask)
}

// Attribute packs a data nibble and a data length into an attribute byte.
func Attribute(nibble byte, dataLen int) (byte, error) {
	if dataLen < 1 || dataLen > MaxLen-HeaderLen {
		return 0, fmt.Errorf("frame: data length %d outside 1..%d", dataLen, MaxLen-HeaderLen)
	}
	if nibble > 0x0F {
		return 0, fmt.Errorf("frame: attribute nibble 0x%X exceeds 4 bits", nibble)
	}
	return nibble<<4 | byte(dataLen-1), nil
}

// Split separates a raw frame into its parts, verifying the checksum.
// The caller has already validated the length.
func Split(raw []byte, cs Checksum) (Frame, error) {
	if len(raw) < MinLen+cs.Size() {
		return Frame{}, protocol.Errorf(protocol.ErrInsufficientData, first(raw), "frame of %d bytes", len(raw))
	}
	if err := cs.Verify(raw); err != nil {
		return Frame{}, err
	}
	body := raw[:len(raw)-cs.Size()]
	data := make([]byte, len(body)-HeaderLen)
	copy(data, body[HeaderLen:])
	return Frame{Command: raw[0], Attribute: raw[1], Data: data}, nil
}

// Bytes renders f to wire bytes with the checksum appended.
func (f Frame) Bytes(cs Checksum) []byte {
	out := make([]byte, 0, HeaderLen+len(f.Data)+cs.Size())
	out = append(out, f.Command, f.Attribute)
	out = append(out, f.Data...)
	return cs.Append(out)
}

// Source is anything that yields up to n bytes per call.
type Source interface {
	Read(ctx context.Context, n int) ([]byte, error)
}

// ReadFrame reads exactly one declared frame from src. It returns io.EOF
// when the stream ends on a frame boundary and ErrInsufficientData when it
// ends inside a frame. The declared length is always consumed, so the stream
// stays aligned even when the command is unknown.
func ReadFrame(ctx context.Context, src Source, cs Checksum) ([]byte, error) {
	head, err := readFull(ctx, src, HeaderLen)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, protocol.Errorf(protocol.ErrInsufficientData, first(head), "stream ended inside header")
		}
		return nil, err
	}
	total := DeclaredLen(head[1]) + cs.Size()
	rest, err := readFull(ctx, src, total-HeaderLen)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, protocol.Errorf(protocol.ErrInsufficientData, head[0], "stream ended after %d of %d bytes", HeaderLen+len(rest), total)
		}
		return nil, err
	}
	return append(head, rest...), nil
}

// readFull keeps reading until n bytes arrived. A clean end before the
// first byte is io.EOF; an end after it is io.ErrUnexpectedEOF.
func readFull(ctx context.Context, src Source, n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	for len(buf) < n {
		chunk, err := src.Read(ctx, n-len(buf))
		buf = append(buf, chunk...)
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 && len(buf) < n {
				return buf, io.ErrUnexpectedEOF
			}
			if errors.Is(err, io.EOF) && len(buf) == n {
				return buf, nil
			}
			return buf, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil && len(buf) < n {
			return buf, ctxErr
		}
	}
	return buf, nil
}

func first(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
