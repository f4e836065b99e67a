// Package nmea verifies, parses and builds NMEA 0183 sentences.
//
// Parsing stops at the address field and the comma-separated field list;
// field grammar belongs to consumers.
package nmea

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	gonmea "github.com/adrianmo/go-nmea"

	"github.com/danmuck/seabridge/internal/protocol"
)

var (
	ErrMalformedSentence = errors.New("nmea: malformed sentence")
	// ErrUnknownTag is tolerated by readers: the sentence is still usable.
	ErrUnknownTag = errors.New("nmea: unknown sentence tag")
)

const (
	startParametric    = '$'
	startEncapsulation = '!'
	checksumDelimiter  = '*'
	// MaxLen is the 0183 limit including the start character and CRLF.
	MaxLen = 82
)

// Sentence is one parsed line.
type Sentence struct {
	Start  byte
	Talker string
	Type   string
	Fields []string
	// Known is false when Type has no entry in the tag table.
	Known bool
}

// Checksum is the two hex digit XOR of body, which excludes the start
// character and the '*'.
func Checksum(body string) string {
	return gonmea.Checksum(body)
}

// errBaseOnly stops the go-nmea parser once the address and fields are
// split; typed decoding of fields is left to consumers.
var errBaseOnly = errors.New("nmea: base sentence captured")

// split returns the body between start char and '*' and the hex checksum.
func split(line string) (start byte, body, sum string, err error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 2 {
		return 0, "", "", fmt.Errorf("%w: %q too short", ErrMalformedSentence, line)
	}
	start = line[0]
	if start != startParametric && start != startEncapsulation {
		return 0, "", "", fmt.Errorf("%w: start character %q", ErrMalformedSentence, start)
	}
	star := strings.LastIndexByte(line, checksumDelimiter)
	if star < 0 {
		return 0, "", "", fmt.Errorf("%w: missing checksum", ErrMalformedSentence)
	}
	return start, line[1:star], line[star+1:], nil
}

// VerifyChecksum checks the trailing "*hh" token of line.
func VerifyChecksum(line string) error {
	_, body, sum, err := split(line)
	if err != nil {
		return err
	}
	if len(sum) != 2 {
		return fmt.Errorf("%w: checksum token %q", ErrMalformedSentence, sum)
	}
	if _, err := strconv.ParseUint(sum, 16, 8); err != nil {
		return fmt.Errorf("%w: checksum token %q", ErrMalformedSentence, sum)
	}
	if got := Checksum(body); got != strings.ToUpper(sum) {
		return fmt.Errorf("%w: sentence says %s, computed %s", protocol.ErrChecksumMismatch, sum, got)
	}
	return nil
}

// Parse verifies line and splits it into address and fields. An unknown tag
// returns the parsed sentence together with ErrUnknownTag.
func Parse(line string) (Sentence, error) {
	if err := VerifyChecksum(line); err != nil {
		return Sentence{}, err
	}
	var (
		base     gonmea.BaseSentence
		captured bool
	)
	parser := gonmea.SentenceParser{
		OnBaseSentence: func(b *gonmea.BaseSentence) error {
			base, captured = *b, true
			return errBaseOnly
		},
	}
	if _, err := parser.Parse(strings.TrimRight(line, "\r\n")); !captured {
		return Sentence{}, fmt.Errorf("%w: %v", ErrMalformedSentence, err)
	}
	if base.Talker == "" || base.Type == "" {
		return Sentence{}, fmt.Errorf("%w: address %q", ErrMalformedSentence, base.Prefix())
	}
	s := Sentence{Start: line[0], Talker: base.Talker, Type: base.Type, Fields: base.Fields}
	tag, ok := tags[s.Type]
	if !ok {
		return s, fmt.Errorf("%w: %s%s", ErrUnknownTag, s.Talker, s.Type)
	}
	s.Known = true
	if len(s.Fields) < tag.minFields {
		return Sentence{}, fmt.Errorf("%w: %s has %d fields, needs %d", ErrMalformedSentence, s.Type, len(s.Fields), tag.minFields)
	}
	return s, nil
}

// New builds a parametric sentence.
func New(talker, typ string, fields ...string) Sentence {
	_, known := tags[typ]
	return Sentence{Start: startParametric, Talker: talker, Type: typ, Fields: fields, Known: known}
}

// Body is the checksummed part of the sentence.
func (s Sentence) Body() string {
	var b strings.Builder
	b.WriteString(s.Talker)
	b.WriteString(s.Type)
	for _, f := range s.Fields {
		b.WriteByte(',')
		b.WriteString(f)
	}
	return b.String()
}

// String renders the sentence as wire text terminated by CRLF.
func (s Sentence) String() string {
	start := s.Start
	if start == 0 {
		start = startParametric
	}
	body := s.Body()
	return fmt.Sprintf("%c%s*%s\r\n", start, body, Checksum(body))
}

// Field returns field i or "" when absent.
func (s Sentence) Field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return s.Fields[i]
}
