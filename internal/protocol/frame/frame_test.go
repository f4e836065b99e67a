package frame

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/seabridge/internal/protocol"
	"github.com/danmuck/seabridge/internal/testutil/testlog"
)

// chunkSource hands out at most step bytes per Read, then io.EOF.
type chunkSource struct {
	data []byte
	step int
}

func (s *chunkSource) Read(_ context.Context, n int) ([]byte, error) {
	if len(s.data) == 0 {
		return nil, io.EOF
	}
	if n > s.step {
		n = s.step
	}
	if n > len(s.data) {
		n = len(s.data)
	}
	out := s.data[:n]
	s.data = s.data[n:]
	return out, nil
}

func TestDeclaredLenAndAttribute(t *testing.T) {
	testlog.Start(t)
	if got := DeclaredLen(0x02); got != 5 {
		t.Fatalf("declared len got=%d want=5", got)
	}
	if got := DeclaredLen(0x71); got != 4 {
		t.Fatalf("high nibble must not affect length, got=%d", got)
	}
	attr, err := Attribute(0x2, 2)
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}
	if attr != 0x21 {
		t.Fatalf("attribute got=0x%02X want=0x21", attr)
	}
	if _, err := Attribute(0, 0); err == nil {
		t.Fatalf("expected error for zero data length")
	}
	if _, err := Attribute(0x10, 1); err == nil {
		t.Fatalf("expected error for 5-bit nibble")
	}
}

func TestSplitAndBytesRoundTrip(t *testing.T) {
	testlog.Start(t)
	raw := []byte{0x00, 0x02, 0x00, 0xDB, 0x02}
	f, err := Split(raw, NoChecksum)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if f.Command != 0x00 || f.Attribute != 0x02 || !bytes.Equal(f.Data, []byte{0x00, 0xDB, 0x02}) {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if got := f.Bytes(NoChecksum); !bytes.Equal(got, raw) {
		t.Fatalf("bytes mismatch: got=% X want=% X", got, raw)
	}
}

func TestSum8DetectsEverySingleBitFlip(t *testing.T) {
	testlog.Start(t)
	raw := Frame{Command: 0x20, Attribute: 0x01, Data: []byte{0x53, 0x00}}.Bytes(Sum8)
	if err := Sum8.Verify(raw); err != nil {
		t.Fatalf("verify clean frame: %v", err)
	}
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			flipped := bytes.Clone(raw)
			flipped[i] ^= 1 << bit
			if err := Sum8.Verify(flipped); !errors.Is(err, protocol.ErrChecksumMismatch) {
				t.Fatalf("byte=%d bit=%d: expected checksum mismatch, got %v", i, bit, err)
			}
		}
	}
}

func TestXor8AppendVerify(t *testing.T) {
	testlog.Start(t)
	raw := Xor8.Append([]byte{0x30, 0x00, 0x0C})
	if raw[3] != 0x30^0x00^0x0C {
		t.Fatalf("xor8 got=0x%02X", raw[3])
	}
	if err := Xor8.Verify(raw); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestParseChecksum(t *testing.T) {
	testlog.Start(t)
	for name, want := range map[string]Checksum{"": NoChecksum, "none": NoChecksum, "SUM8": Sum8, "xor8": Xor8} {
		got, err := ParseChecksum(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if got.String() != want.String() {
			t.Fatalf("parse %q got=%s want=%s", name, got, want)
		}
	}
	if _, err := ParseChecksum("crc32"); err == nil {
		t.Fatalf("expected error for unknown checksum")
	}
}

func TestReadFrameSequence(t *testing.T) {
	testlog.Start(t)
	stream := []byte{
		0x00, 0x02, 0x00, 0xDB, 0x02,
		0xFF, 0x03, 0x01, 0x02, 0x03, 0x04,
		0x36, 0x00, 0x01,
	}
	src := &chunkSource{data: stream, step: 1}
	ctx := context.Background()

	want := [][]byte{stream[0:5], stream[5:11], stream[11:14]}
	for i, w := range want {
		got, err := ReadFrame(ctx, src, NoChecksum)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(got, w) {
			t.Fatalf("frame %d got=% X want=% X", i, got, w)
		}
	}
	if _, err := ReadFrame(ctx, src, NoChecksum); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestReadFrameTruncatedIsInsufficientData(t *testing.T) {
	testlog.Start(t)
	src := &chunkSource{data: []byte{0x00, 0x02, 0x00, 0xDB}, step: 3}
	_, err := ReadFrame(context.Background(), src, NoChecksum)
	if !errors.Is(err, protocol.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}

	src = &chunkSource{data: []byte{0x00}, step: 3}
	_, err = ReadFrame(context.Background(), src, NoChecksum)
	if !errors.Is(err, protocol.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for lone command byte, got %v", err)
	}
}

func TestReadFrameIncludesChecksumByte(t *testing.T) {
	testlog.Start(t)
	raw := Frame{Command: 0x36, Attribute: 0x00, Data: []byte{0x01}}.Bytes(Sum8)
	src := &chunkSource{data: raw, step: 2}
	got, err := ReadFrame(context.Background(), src, Sum8)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(got, raw) || len(got) != 4 {
		t.Fatalf("got=% X want=% X", got, raw)
	}
}
