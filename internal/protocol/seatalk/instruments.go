package seatalk

import "math"

const metersPerFoot = 0.3048

// Depth flag bits carried in the first data byte of 0x00.
const (
	DepthShallowAlarm        byte = 0x01
	DepthDeepAlarm           byte = 0x02
	DepthTransducerDefective byte = 0x04
	DepthMetricDisplay       byte = 0x40
	DepthAnchorAlarm         byte = 0x80
)

// Depth below transducer: 00 02 YZ XX XX, XXXX/10 feet.
type Depth struct {
	Feet  float64
	Flags byte
}

// DepthFromMeters truncates to the wire resolution of a tenth of a foot.
func DepthFromMeters(m float64) Depth {
	return Depth{Feet: math.Floor(m/metersPerFoot*10) / 10}
}

func (Depth) Command() Command { return CmdDepth }

func (d Depth) Meters() float64 {
	return d.Feet * metersPerFoot
}

func (d Depth) Has(flag byte) bool {
	return d.Flags&flag != 0
}

func (d Depth) encode() (byte, []byte, error) {
	raw, err := scaled(d.Feet, 10, math.MaxUint16)
	if err != nil {
		return 0, nil, err
	}
	return 0, append([]byte{d.Flags}, putLE16(raw)...), nil
}

func decodeDepth(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	return Depth{Flags: data[0], Feet: float64(le16(data[1:3])) / 10}, nil
}

// EquipmentID announces an instrument: 01 05 + six identifying bytes.
type EquipmentID struct {
	Equipment Equipment
}

func (EquipmentID) Command() Command { return CmdEquipmentID }

func (e EquipmentID) encode() (byte, []byte, error) {
	code, err := equipmentCodes.Raw(e.Equipment)
	if err != nil {
		return 0, nil, err
	}
	return 0, code[:], nil
}

func decodeEquipmentID(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	var code [6]byte
	copy(code[:], data)
	eq, err := equipmentCodes.Value(code)
	if err != nil {
		return nil, err
	}
	return EquipmentID{Equipment: eq}, nil
}

// ApparentWindAngle: 10 01 XX XX, raw/2 degrees.
type ApparentWindAngle struct {
	Degrees float64
}

func (ApparentWindAngle) Command() Command { return CmdApparentWindAngle }

func (a ApparentWindAngle) encode() (byte, []byte, error) {
	if a.Degrees >= 360 {
		return 0, nil, invalid("wind angle %v outside 0..360", a.Degrees)
	}
	raw, err := scaled(a.Degrees, 2, 719)
	if err != nil {
		return 0, nil, err
	}
	return 0, putLE16(raw), nil
}

func decodeApparentWindAngle(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	raw := le16(data)
	if raw > 719 {
		return nil, invalid("wind angle raw %d outside 0..719", raw)
	}
	return ApparentWindAngle{Degrees: float64(raw) / 2}, nil
}

// ApparentWindSpeed: 11 01 XX 0Y, (XX & 0x7F) + Y/10; XX & 0x80 flags m/s display.
type ApparentWindSpeed struct {
	Knots float64
	Unit  WindUnit
}

func (ApparentWindSpeed) Command() Command { return CmdApparentWindSpeed }

func (a ApparentWindSpeed) encode() (byte, []byte, error) {
	unit, err := windUnitCodes.Raw(a.Unit)
	if err != nil {
		return 0, nil, err
	}
	tenths, err := scaled(a.Knots, 10, 0x7F*10+9)
	if err != nil {
		return 0, nil, err
	}
	return 0, []byte{unit | byte(tenths/10), byte(tenths % 10)}, nil
}

func decodeApparentWindSpeed(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	unit, err := windUnitCodes.Value(data[0] & 0x80)
	if err != nil {
		return nil, err
	}
	if data[1] > 9 {
		return nil, invalid("wind speed tenths 0x%02X outside 0..9", data[1])
	}
	tenths := int(data[0]&0x7F)*10 + int(data[1])
	return ApparentWindSpeed{Knots: float64(tenths) / 10, Unit: unit}, nil
}

// Speed through water: 20 01 XX XX, raw/10 knots.
type Speed struct {
	Knots float64
}

func (Speed) Command() Command { return CmdSpeed }

func (s Speed) encode() (byte, []byte, error) {
	raw, err := scaled(s.Knots, 10, math.MaxUint16)
	if err != nil {
		return 0, nil, err
	}
	return 0, putLE16(raw), nil
}

func decodeSpeed(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	return Speed{Knots: float64(le16(data)) / 10}, nil
}

// TripMileage: 21 02 XX XX 0X, 20-bit raw/100 nautical miles.
type TripMileage struct {
	NauticalMiles float64
}

func (TripMileage) Command() Command { return CmdTripMileage }

func (m TripMileage) encode() (byte, []byte, error) {
	raw, err := scaled(m.NauticalMiles, 100, 0xFFFFF)
	if err != nil {
		return 0, nil, err
	}
	return 0, []byte{byte(raw), byte(raw >> 8), byte(raw >> 16)}, nil
}

func decodeTripMileage(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	if data[2] > 0x0F {
		return nil, invalid("trip mileage high byte 0x%02X exceeds a nibble", data[2])
	}
	raw := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	return TripMileage{NauticalMiles: float64(raw) / 100}, nil
}

// TotalMileage: 22 02 XX XX 00, raw/10 nautical miles.
type TotalMileage struct {
	NauticalMiles float64
}

func (TotalMileage) Command() Command { return CmdTotalMileage }

func (m TotalMileage) encode() (byte, []byte, error) {
	raw, err := scaled(m.NauticalMiles, 10, math.MaxUint16)
	if err != nil {
		return 0, nil, err
	}
	return 0, append(putLE16(raw), 0x00), nil
}

func decodeTotalMileage(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	if err := requireBytes(data[2:], 0x00); err != nil {
		return nil, err
	}
	return TotalMileage{NauticalMiles: float64(le16(data)) / 10}, nil
}

// WaterSensorDefective is the status nibble bit of 0x23.
const WaterSensorDefective byte = 0x4

// WaterTemperature: 23 Z1 XX YY, XX degrees Celsius, YY degrees Fahrenheit.
type WaterTemperature struct {
	Celsius    int
	Fahrenheit int
	Status     byte
}

// WaterTemperatureFromCelsius truncates to whole degrees in both scales.
func WaterTemperatureFromCelsius(c float64) WaterTemperature {
	return WaterTemperature{Celsius: int(c), Fahrenheit: int(c*9/5 + 32)}
}

func (WaterTemperature) Command() Command { return CmdWaterTemperature }

func (w WaterTemperature) SensorDefective() bool {
	return w.Status&WaterSensorDefective != 0
}

func (w WaterTemperature) encode() (byte, []byte, error) {
	if w.Celsius < math.MinInt8 || w.Celsius > math.MaxInt8 {
		return 0, nil, invalid("water temperature %d C outside int8", w.Celsius)
	}
	if w.Fahrenheit < math.MinInt8 || w.Fahrenheit > math.MaxInt8 {
		return 0, nil, invalid("water temperature %d F outside int8", w.Fahrenheit)
	}
	if w.Status > 0x0F {
		return 0, nil, invalid("status 0x%X exceeds a nibble", w.Status)
	}
	return w.Status, []byte{byte(int8(w.Celsius)), byte(int8(w.Fahrenheit))}, nil
}

func decodeWaterTemperature(nibble byte, data []byte) (Datagram, error) {
	return WaterTemperature{
		Celsius:    int(int8(data[0])),
		Fahrenheit: int(int8(data[1])),
		Status:     nibble,
	}, nil
}

// Speed2 through water: 26 04 XX XX YY YY DE, hundredths of a knot.
type Speed2 struct {
	Knots          float64
	SecondaryKnots float64
	Flags          byte
}

func (Speed2) Command() Command { return CmdSpeed2 }

func (s Speed2) encode() (byte, []byte, error) {
	primary, err := scaled(s.Knots, 100, math.MaxUint16)
	if err != nil {
		return 0, nil, err
	}
	secondary, err := scaled(s.SecondaryKnots, 100, math.MaxUint16)
	if err != nil {
		return 0, nil, err
	}
	data := append(putLE16(primary), putLE16(secondary)...)
	return 0, append(data, s.Flags), nil
}

func decodeSpeed2(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	return Speed2{
		Knots:          float64(le16(data[0:2])) / 100,
		SecondaryKnots: float64(le16(data[2:4])) / 100,
		Flags:          data[4],
	}, nil
}

const waterTemperature2Offset = 1000

// WaterTemperature2: 27 01 XX XX, raw/10 - 100 degrees Celsius.
type WaterTemperature2 struct {
	Celsius float64
}

func (WaterTemperature2) Command() Command { return CmdWaterTemperature2 }

func (w WaterTemperature2) encode() (byte, []byte, error) {
	tenths, err := wireUnits(w.Celsius, 10)
	if err != nil {
		return 0, nil, err
	}
	raw := tenths + waterTemperature2Offset
	if raw < 0 || raw > math.MaxUint16 {
		return 0, nil, invalid("water temperature %v C outside wire range", w.Celsius)
	}
	return 0, putLE16(uint32(raw)), nil
}

func decodeWaterTemperature2(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	tenths := int(le16(data)) - waterTemperature2Offset
	return WaterTemperature2{Celsius: float64(tenths) / 10}, nil
}

// DisplayUnits: 24 02 00 00 XX.
type DisplayUnits struct {
	Units DistanceUnits
}

func (DisplayUnits) Command() Command { return CmdDisplayUnits }

func (d DisplayUnits) encode() (byte, []byte, error) {
	code, err := distanceUnitCodes.Raw(d.Units)
	if err != nil {
		return 0, nil, err
	}
	return 0, []byte{0x00, 0x00, code}, nil
}

func decodeDisplayUnits(nibble byte, data []byte) (Datagram, error) {
	if err := requireZeroNibble(nibble); err != nil {
		return nil, err
	}
	if err := requireBytes(data, 0x00, 0x00); err != nil {
		return nil, err
	}
	units, err := distanceUnitCodes.Value(data[2])
	if err != nil {
		return nil, err
	}
	return DisplayUnits{Units: units}, nil
}
