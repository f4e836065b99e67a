package nmea

import (
	"errors"
	"testing"

	"github.com/danmuck/seabridge/internal/protocol"
	"github.com/danmuck/seabridge/internal/testutil/testlog"
)

const (
	gga = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"
	rmc = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"
)

func TestVerifyChecksumAcceptsReferenceSentences(t *testing.T) {
	testlog.Start(t)
	for _, line := range []string{gga, rmc} {
		if err := VerifyChecksum(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
}

func TestVerifyChecksumRejectsMismatch(t *testing.T) {
	testlog.Start(t)
	bad := rmc[:len(rmc)-2] + "6B"
	err := VerifyChecksum(bad)
	if !errors.Is(err, protocol.ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestVerifyChecksumRejectsMalformed(t *testing.T) {
	testlog.Start(t)
	for _, line := range []string{
		"",
		"$",
		"GPGGA,1,2*00",
		"$GPDBT,1.0,f,0.3,M,0.1,F",
		"$GPDBT,1.0,f*4",
		"$GPDBT,1.0,f*ZZ",
	} {
		if err := VerifyChecksum(line); !errors.Is(err, ErrMalformedSentence) {
			t.Fatalf("%q: expected malformed, got %v", line, err)
		}
	}
}

func TestParseSplitsAddressAndFields(t *testing.T) {
	testlog.Start(t)
	s, err := Parse(gga)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Talker != "GP" || s.Type != "GGA" || !s.Known {
		t.Fatalf("unexpected address: %+v", s)
	}
	if len(s.Fields) != 14 || s.Field(1) != "4807.038" || s.Field(13) != "" {
		t.Fatalf("fields=%q", s.Fields)
	}
	if s.Field(99) != "" {
		t.Fatalf("out of range field should be empty")
	}
}

func TestParseUnknownTagStillReturnsSentence(t *testing.T) {
	testlog.Start(t)
	line := New("GP", "ABC", "1", "2").String()
	s, err := Parse(line)
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected unknown tag, got %v", err)
	}
	if s.Known || s.Talker != "GP" || s.Type != "ABC" || len(s.Fields) != 2 {
		t.Fatalf("unexpected sentence: %+v", s)
	}
}

func TestParseProprietaryAddress(t *testing.T) {
	testlog.Start(t)
	line := New("P", "SMDST", "x").String()
	s, err := Parse(line)
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected unknown tag, got %v", err)
	}
	if s.Talker != "P" || s.Type != "SMDST" {
		t.Fatalf("unexpected address: %+v", s)
	}
}

func TestParseShortAddressIsUnknownTag(t *testing.T) {
	testlog.Start(t)
	s, err := Parse(New("GP", "A", "1").String())
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected unknown tag, got %v", err)
	}
	if s.Talker != "GP" || s.Type != "A" || s.Known || s.Field(0) != "1" {
		t.Fatalf("unexpected sentence: %+v", s)
	}
}

func TestChecksumMatchesReferenceToken(t *testing.T) {
	testlog.Start(t)
	body := rmc[1 : len(rmc)-3]
	if got := Checksum(body); got != "6A" {
		t.Fatalf("checksum=%q want=6A", got)
	}
	lower := rmc[:len(rmc)-2] + "6a"
	if err := VerifyChecksum(lower); err != nil {
		t.Fatalf("lower-case token: %v", err)
	}
}

func TestParseRejectsShortKnownSentence(t *testing.T) {
	testlog.Start(t)
	line := New("SD", "DBT", "1.0", "f").String()
	if _, err := Parse(line); !errors.Is(err, ErrMalformedSentence) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestNewRendersChecksumAndTerminator(t *testing.T) {
	testlog.Start(t)
	s := New("GP", "RMC", "123519", "A", "4807.038", "N", "01131.000", "E", "022.4", "084.4", "230394", "003.1", "W")
	if got := s.String(); got != rmc+"\r\n" {
		t.Fatalf("got=%q want=%q", got, rmc+"\r\n")
	}
	parsed, err := Parse(s.String())
	if err != nil {
		t.Fatalf("parse rendered: %v", err)
	}
	if parsed.Body() != s.Body() {
		t.Fatalf("body mismatch %q vs %q", parsed.Body(), s.Body())
	}
}

func TestTagTable(t *testing.T) {
	testlog.Start(t)
	for _, typ := range []string{"DBT", "MWV", "VHW", "MTW", "VLW", "ZDA"} {
		if !Known(typ) || Describe(typ) == "" {
			t.Fatalf("%s should be known", typ)
		}
	}
	types := Types()
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Fatalf("types not sorted: %v", types)
		}
	}
}
