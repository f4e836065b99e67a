package seatalk

import "github.com/danmuck/seabridge/internal/protocol"

// Equipment identifies the instrument announcing itself with 0x01.
type Equipment int

const (
	EquipmentCourseComputer400G Equipment = iota + 1
	EquipmentST60Tridata
	EquipmentST60Log
	EquipmentST80Masterview
	EquipmentST80MaxiDisplay
	EquipmentSmartControllerRemote
)

var equipmentCodes = protocol.NewValueMap("equipment", map[Equipment][6]byte{
	EquipmentCourseComputer400G:    {0x00, 0x00, 0x00, 0x60, 0x01, 0x00},
	EquipmentST60Tridata:           {0x04, 0xBA, 0x20, 0x28, 0x01, 0x00},
	EquipmentST60Log:               {0x70, 0x99, 0x10, 0x28, 0x01, 0x00},
	EquipmentST80Masterview:        {0xF3, 0x18, 0x00, 0x26, 0x0F, 0x06},
	EquipmentST80MaxiDisplay:       {0xFA, 0x03, 0x00, 0x30, 0x07, 0x03},
	EquipmentSmartControllerRemote: {0xFF, 0xFF, 0xFF, 0xD0, 0x00, 0x00},
})

// WindUnit selects the display unit flagged in apparent wind speed.
type WindUnit int

const (
	WindKnots WindUnit = iota
	WindMetersPerSecond
)

var windUnitCodes = protocol.NewValueMap("wind unit", map[WindUnit]byte{
	WindKnots:           0x00,
	WindMetersPerSecond: 0x80,
})

// DistanceUnits is the mileage and speed unit pair shown on instruments.
type DistanceUnits int

const (
	UnitsNauticalMilesKnots DistanceUnits = iota
	UnitsStatuteMilesMPH
	UnitsKilometersKMH
)

var distanceUnitCodes = protocol.NewValueMap("display units", map[DistanceUnits]byte{
	UnitsNauticalMilesKnots: 0x00,
	UnitsStatuteMilesMPH:    0x06,
	UnitsKilometersKMH:      0x86,
})

// lampLevels maps lamp intensity L0..L3 to its nibble code.
var lampLevels = protocol.NewValueMap("lamp intensity", map[int]byte{
	0: 0x0,
	1: 0x4,
	2: 0x8,
	3: 0xC,
})

// Alarm names the alarm acknowledged by a 0x68 keystroke.
type Alarm int

const (
	AlarmShallowWater Alarm = iota + 1
	AlarmDeepWater
	AlarmAnchor
	AlarmTrueWindSpeedHigh
	AlarmTrueWindSpeedLow
	AlarmTrueWindAngleHigh
	AlarmTrueWindAngleLow
	AlarmApparentWindSpeedHigh
	AlarmApparentWindSpeedLow
	AlarmApparentWindAngleHigh
	AlarmApparentWindAngleLow
)

var alarmCodes = protocol.NewValueMap("alarm", map[Alarm]byte{
	AlarmShallowWater:          0x1,
	AlarmDeepWater:             0x2,
	AlarmAnchor:                0x3,
	AlarmTrueWindSpeedHigh:     0x4,
	AlarmTrueWindSpeedLow:      0x5,
	AlarmTrueWindAngleHigh:     0x6,
	AlarmTrueWindAngleLow:      0x7,
	AlarmApparentWindSpeedHigh: 0x8,
	AlarmApparentWindSpeedLow:  0x9,
	AlarmApparentWindAngleHigh: 0xA,
	AlarmApparentWindAngleLow:  0xB,
})

// Key is an autopilot keypad key or key combination.
type Key int

const (
	KeyAuto Key = iota + 1
	KeyStandby
	KeyTrack
	KeyDisplay
	KeyMinus1
	KeyMinus10
	KeyPlus1
	KeyPlus10
	KeyPortTack
	KeyStarboardTack
	KeyWindMode
)

var keyCodes = protocol.NewValueMap("key", map[Key]byte{
	KeyAuto:          0x01,
	KeyStandby:       0x02,
	KeyTrack:         0x03,
	KeyDisplay:       0x04,
	KeyMinus1:        0x05,
	KeyMinus10:       0x06,
	KeyPlus1:         0x07,
	KeyPlus10:        0x08,
	KeyPortTack:      0x21,
	KeyStarboardTack: 0x22,
	KeyWindMode:      0x23,
})

// ResponseLevel is the autopilot deadband setting.
type ResponseLevel int

const (
	ResponseAutomaticDeadband ResponseLevel = iota + 1
	ResponseMinimumDeadband
)

var responseLevelCodes = protocol.NewValueMap("response level", map[ResponseLevel]byte{
	ResponseAutomaticDeadband: 0x1,
	ResponseMinimumDeadband:   0x2,
})

// DeviceID identifies the sender of a 0x90 device identification.
type DeviceID int

const (
	DeviceST600R DeviceID = iota + 1
	DeviceCourseComputer150
	DeviceNMEABridge
)

var deviceCodes = protocol.NewValueMap("device", map[DeviceID]byte{
	DeviceST600R:            0x02,
	DeviceCourseComputer150: 0x05,
	DeviceNMEABridge:        0xA3,
})
