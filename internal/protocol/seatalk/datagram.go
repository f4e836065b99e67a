package seatalk

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/danmuck/seabridge/internal/protocol"
)

// Command is the leading byte of a SeaTalk frame.
type Command byte

const (
	CmdDepth                Command = 0x00
	CmdEquipmentID          Command = 0x01
	CmdApparentWindAngle    Command = 0x10
	CmdApparentWindSpeed    Command = 0x11
	CmdSpeed                Command = 0x20
	CmdTripMileage          Command = 0x21
	CmdTotalMileage         Command = 0x22
	CmdWaterTemperature     Command = 0x23
	CmdDisplayUnits         Command = 0x24
	CmdSpeed2               Command = 0x26
	CmdWaterTemperature2    Command = 0x27
	CmdSetLampIntensity     Command = 0x30
	CmdCancelMOB            Command = 0x36
	CmdGMTTime              Command = 0x54
	CmdDate                 Command = 0x56
	CmdAlarmAcknowledgement Command = 0x68
	CmdKeystroke            Command = 0x86
	CmdSetResponseLevel     Command = 0x87
	CmdDeviceIdentification Command = 0x90
	CmdSetRudderGain        Command = 0x91
)

func (c Command) String() string {
	if def, ok := registry[c]; ok {
		return def.name
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

// Datagram is one decoded SeaTalk message. Implementations are comparable
// value types holding fields in wire resolution, so a decoded datagram
// compares equal to the one that was encoded.
type Datagram interface {
	Command() Command
	// encode returns the attribute nibble and the data bytes after the attribute.
	encode() (nibble byte, data []byte, err error)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", protocol.ErrDataValidation, fmt.Sprintf(format, args...))
}

func requireZeroNibble(nibble byte) error {
	if nibble != 0 {
		return invalid("attribute nibble 0x%X must be zero", nibble)
	}
	return nil
}

func requireBytes(data []byte, want ...byte) error {
	for i, b := range want {
		if data[i] != b {
			return invalid("data byte %d is 0x%02X, want 0x%02X", i, data[i], b)
		}
	}
	return nil
}

// wireUnits converts v to a whole count of 1/perUnit steps. A value between
// two steps is rejected, so decoding the count gives back v exactly.
func wireUnits(v, perUnit float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid("value %v is not finite", v)
	}
	n := math.Round(v * perUnit)
	if n/perUnit != v {
		return 0, invalid("value %v is not a multiple of 1/%v", v, perUnit)
	}
	return n, nil
}

// scaled converts v to an unsigned wire integer at the given resolution.
func scaled(v, perUnit float64, max uint32) (uint32, error) {
	raw, err := wireUnits(v, perUnit)
	if err != nil {
		return 0, err
	}
	if raw < 0 || raw > float64(max) {
		return 0, invalid("value %v outside wire range 0..%d", v, max)
	}
	return uint32(raw), nil
}

func le16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

func putLE16(v uint32) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, uint16(v))
	return out
}
