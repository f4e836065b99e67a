package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/seabridge/internal/protocol"
	"github.com/danmuck/seabridge/internal/protocol/nmea"
	"github.com/danmuck/seabridge/internal/transport"
)

// maxLineLen caps an unterminated line before it is thrown away.
const maxLineLen = 4 * nmea.MaxLen

// NMEA reads newline-terminated sentences one byte at a time.
type NMEA struct{}

func NewNMEA() *NMEA {
	return &NMEA{}
}

// Next accumulates bytes until '\n' and parses the line. A sentence with an
// unknown tag is returned with Known unset and no error.
func (c *NMEA) Next(ctx context.Context, t transport.Transport) (nmea.Sentence, []byte, error) {
	line := make([]byte, 0, nmea.MaxLen)
	for {
		chunk, err := t.Read(ctx, 1)
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				log.Debug().Str("transport", t.String()).Int("bytes", len(line)).Msg("stream ended inside a sentence")
			}
			return nmea.Sentence{}, nil, err
		}
		if len(chunk) == 0 {
			return nmea.Sentence{}, nil, c.reset(ctx, t, protocol.Errorf(protocol.ErrCharset, 0, "undecodable input after %d bytes", len(line)))
		}
		line = append(line, chunk...)
		if chunk[len(chunk)-1] == '\n' {
			break
		}
		if len(line) > maxLineLen {
			return nmea.Sentence{}, nil, c.reset(ctx, t, protocol.Errorf(protocol.ErrExcessData, 0, "no line end within %d bytes", maxLineLen))
		}
	}
	if !utf8.Valid(line) {
		return nmea.Sentence{}, line, c.reset(ctx, t, protocol.Errorf(protocol.ErrCharset, 0, "line is not valid UTF-8"))
	}

	s, err := nmea.Parse(string(line))
	switch {
	case err == nil:
		return s, line, nil
	case errors.Is(err, nmea.ErrUnknownTag):
		log.Debug().Str("transport", t.String()).Str("type", s.Type).Msg("unknown sentence tag")
		return s, line, nil
	case errors.Is(err, protocol.ErrChecksumMismatch):
		return nmea.Sentence{}, line, c.reset(ctx, t, err)
	default:
		return nmea.Sentence{}, line, c.reset(ctx, t, fmt.Errorf("%w: %w", protocol.ErrDataValidation, err))
	}
}

// reset asks the transport to drop what it buffers below the line level
// (serial driver buffers), then hands back cause. Socket transports keep
// their queues, so sentences behind the bad line survive.
func (c *NMEA) reset(ctx context.Context, t transport.Transport, cause error) error {
	if err := t.Flush(ctx); err != nil {
		log.Warn().Err(err).Str("transport", t.String()).Msg("flush after bad sentence failed")
	}
	return cause
}

func (c *NMEA) Encode(s nmea.Sentence) ([]byte, error) {
	if s.Talker == "" || s.Type == "" {
		return nil, fmt.Errorf("%w: sentence needs talker and type", nmea.ErrMalformedSentence)
	}
	return []byte(s.String()), nil
}

func (c *NMEA) Label(s nmea.Sentence) string {
	if !s.Known {
		return "unknown"
	}
	return s.Type
}

// NewNMEADevice pairs a transport with the sentence codec.
func NewNMEADevice(name string, t transport.Transport) *Device[nmea.Sentence] {
	return New[nmea.Sentence](name, t, NewNMEA())
}
