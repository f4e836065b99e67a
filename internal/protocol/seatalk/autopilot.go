package seatalk

// SetLampIntensity: 30 00 0X, levels 0..3 on the wire as 0, 4, 8, C.
type SetLampIntensity struct {
	Level int
}

func (SetLampIntensity) Command() Command { return CmdSetLampIntensity }

func (s SetLampIntensity) encode() (byte, []byte, error) {
	code, err := lampLevels.Raw(s.Level)
	if err != nil {
		return 0, nil, err
	}
	return 0, []byte{code}, nil
}

func decodeSetLampIntensity(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	level, err := lampLevels.Value(data[0])
	if err != nil {
		return nil, err
	}
	return SetLampIntensity{Level: level}, nil
}

// CancelMOB: 36 00 01.
type CancelMOB struct{}

func (CancelMOB) Command() Command { return CmdCancelMOB }

func (CancelMOB) encode() (byte, []byte, error) {
	return 0, []byte{0x01}, nil
}

func decodeCancelMOB(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	if err := requireBytes(data, 0x01); err != nil {
		return nil, err
	}
	return CancelMOB{}, nil
}

// AlarmAcknowledgement: 68 X1 01 00, X names the alarm.
type AlarmAcknowledgement struct {
	Alarm Alarm
}

func (AlarmAcknowledgement) Command() Command { return CmdAlarmAcknowledgement }

func (a AlarmAcknowledgement) encode() (byte, []byte, error) {
	code, err := alarmCodes.Raw(a.Alarm)
	if err != nil {
		return 0, nil, err
	}
	return code, []byte{0x01, 0x00}, nil
}

func decodeAlarmAcknowledgement(nibble byte, data []byte) (Datagram, error) {
	if err := requireBytes(data, 0x01, 0x00); err != nil {
		return nil, err
	}
	alarm, err := alarmCodes.Value(nibble)
	if err != nil {
		return nil, err
	}
	return AlarmAcknowledgement{Alarm: alarm}, nil
}

// Keystroke sources carried in the attribute nibble of 0x86.
const (
	KeySourceST1000 byte = 0x0
	KeySourceZ101   byte = 0x1
	KeySourceST4000 byte = 0x2
)

// Keystroke: 86 X1 YY yy, yy is the bitwise complement of YY.
type Keystroke struct {
	Source byte
	Key    Key
}

func (Keystroke) Command() Command { return CmdKeystroke }

func (k Keystroke) encode() (byte, []byte, error) {
	if k.Source > 0x0F {
		return 0, nil, invalid("keystroke source 0x%X exceeds a nibble", k.Source)
	}
	code, err := keyCodes.Raw(k.Key)
	if err != nil {
		return 0, nil, err
	}
	return k.Source, []byte{code, ^code}, nil
}

func decodeKeystroke(nibble byte, data []byte) (Datagram, error) {
	if data[1] != ^data[0] {
		return nil, invalid("keystroke check byte 0x%02X does not complement 0x%02X", data[1], data[0])
	}
	key, err := keyCodes.Value(data[0])
	if err != nil {
		return nil, err
	}
	return Keystroke{Source: nibble, Key: key}, nil
}

// SetResponseLevel: 87 00 0X.
type SetResponseLevel struct {
	Level ResponseLevel
}

func (SetResponseLevel) Command() Command { return CmdSetResponseLevel }

func (s SetResponseLevel) encode() (byte, []byte, error) {
	code, err := responseLevelCodes.Raw(s.Level)
	if err != nil {
		return 0, nil, err
	}
	return 0, []byte{code}, nil
}

func decodeSetResponseLevel(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	level, err := responseLevelCodes.Value(data[0])
	if err != nil {
		return nil, err
	}
	return SetResponseLevel{Level: level}, nil
}

// DeviceIdentification: 90 00 XX.
type DeviceIdentification struct {
	Device DeviceID
}

func (DeviceIdentification) Command() Command { return CmdDeviceIdentification }

func (d DeviceIdentification) encode() (byte, []byte, error) {
	code, err := deviceCodes.Raw(d.Device)
	if err != nil {
		return 0, nil, err
	}
	return 0, []byte{code}, nil
}

func decodeDeviceIdentification(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	dev, err := deviceCodes.Value(data[0])
	if err != nil {
		return nil, err
	}
	return DeviceIdentification{Device: dev}, nil
}

const (
	minRudderGain = 1
	maxRudderGain = 9
)

// SetRudderGain: 91 00 0X, gain 1..9.
type SetRudderGain struct {
	Gain int
}

func (SetRudderGain) Command() Command { return CmdSetRudderGain }

func (s SetRudderGain) encode() (byte, []byte, error) {
	if s.Gain < minRudderGain || s.Gain > maxRudderGain {
		return 0, nil, invalid("rudder gain %d outside %d..%d", s.Gain, minRudderGain, maxRudderGain)
	}
	return 0, []byte{byte(s.Gain)}, nil
}

func decodeSetRudderGain(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	gain := int(data[0])
	if gain < minRudderGain || gain > maxRudderGain {
		return nil, invalid("rudder gain %d outside %d..%d", gain, minRudderGain, maxRudderGain)
	}
	return SetRudderGain{Gain: gain}, nil
}
