package seatalk

import "sort"

type decodeFunc func(nibble byte, data []byte) (Datagram, error)

// definition is one dispatch entry: dataLen counts the bytes after the
// attribute, so the frame is 2+dataLen bytes before any checksum.
type definition struct {
	name    string
	dataLen int
	decode  decodeFunc
}

// registry is built once at init and only read afterwards.
var registry = map[Command]definition{
	CmdDepth:                {"depth", 3, decodeDepth},
	CmdEquipmentID:          {"equipment_id", 6, decodeEquipmentID},
	CmdApparentWindAngle:    {"apparent_wind_angle", 2, decodeApparentWindAngle},
	CmdApparentWindSpeed:    {"apparent_wind_speed", 2, decodeApparentWindSpeed},
	CmdSpeed:                {"speed", 2, decodeSpeed},
	CmdTripMileage:          {"trip_mileage", 3, decodeTripMileage},
	CmdTotalMileage:         {"total_mileage", 3, decodeTotalMileage},
	CmdWaterTemperature:     {"water_temperature", 2, decodeWaterTemperature},
	CmdDisplayUnits:         {"display_units", 3, decodeDisplayUnits},
	CmdSpeed2:               {"speed2", 5, decodeSpeed2},
	CmdWaterTemperature2:    {"water_temperature2", 2, decodeWaterTemperature2},
	CmdSetLampIntensity:     {"set_lamp_intensity", 1, decodeSetLampIntensity},
	CmdCancelMOB:            {"cancel_mob", 1, decodeCancelMOB},
	CmdGMTTime:              {"gmt_time", 2, decodeGMTTime},
	CmdDate:                 {"date", 2, decodeDate},
	CmdAlarmAcknowledgement: {"alarm_acknowledgement", 2, decodeAlarmAcknowledgement},
	CmdKeystroke:            {"keystroke", 2, decodeKeystroke},
	CmdSetResponseLevel:     {"set_response_level", 1, decodeSetResponseLevel},
	CmdDeviceIdentification: {"device_identification", 1, decodeDeviceIdentification},
	CmdSetRudderGain:        {"set_rudder_gain", 1, decodeSetRudderGain},
}

// Commands lists every supported command in ascending order.
func Commands() []Command {
	out := make([]Command, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Supported reports whether c has a dispatch entry.
func Supported(c Command) bool {
	_, ok := registry[c]
	return ok
}
