package frame

import (
	"fmt"
	"strings"

	"github.com/danmuck/seabridge/internal/protocol"
)

// Checksum is a deterministic function of the preceding frame bytes,
// appended on encode and verified on decode.
type Checksum struct {
	name string
	size int
	sum  func(b []byte) byte
}

var (
	// NoChecksum matches SeaTalk-1 bus traffic, which carries no check byte.
	NoChecksum = Checksum{name: "none"}
	// Sum8 makes all frame bytes, checksum included, sum to zero mod 256.
	Sum8 = Checksum{name: "sum8", size: 1, sum: sum8}
	// Xor8 is the XOR of all preceding bytes.
	Xor8 = Checksum{name: "xor8", size: 1, sum: xor8}
)

// ParseChecksum resolves a checksum by its configuration name.
func ParseChecksum(name string) (Checksum, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoChecksum, nil
	case "sum8":
		return Sum8, nil
	case "xor8":
		return Xor8, nil
	default:
		return Checksum{}, fmt.Errorf("frame: unknown checksum %q", name)
	}
}

func (c Checksum) String() string {
	return c.name
}

// Size is the number of trailing check bytes.
func (c Checksum) Size() int {
	return c.size
}

// Append adds the check byte for b, if any.
func (c Checksum) Append(b []byte) []byte {
	if c.size == 0 {
		return b
	}
	return append(b, c.sum(b))
}

// Verify recomputes the check byte over raw minus its tail.
func (c Checksum) Verify(raw []byte) error {
	if c.size == 0 {
		return nil
	}
	if len(raw) <= c.size {
		return protocol.Errorf(protocol.ErrInsufficientData, first(raw), "no room for checksum")
	}
	body, got := raw[:len(raw)-1], raw[len(raw)-1]
	if want := c.sum(body); want != got {
		return protocol.Errorf(protocol.ErrChecksumMismatch, raw[0], "%s want=0x%02X got=0x%02X", c.name, want, got)
	}
	return nil
}

func sum8(b []byte) byte {
	var s byte
	for _, v := range b {
		s += v
	}
	return -s
}

func xor8(b []byte) byte {
	var s byte
	for _, v := range b {
		s ^= v
	}
	return s
}
