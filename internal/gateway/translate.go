package gateway

import (
	"fmt"
	"strconv"

	"github.com/danmuck/seabridge/internal/protocol/nmea"
	"github.com/danmuck/seabridge/internal/protocol/seatalk"
)

const (
	DefaultTalker  = "II"
	feetPerFathom  = 6.0
	kmhPerKnot     = 1.852
	metersPerFoot  = 0.3048
	windRelative   = "R"
	statusValid    = "A"
	unitKnots      = "N"
	unitMetersPerS = "M"
)

// Translator turns SeaTalk datagrams into NMEA 0183 sentences. Wind and
// mileage sentences need two datagrams; the last value of each is kept.
// A Translator is not safe for concurrent use.
type Translator struct {
	talker string

	windAngle *float64
	windSpeed *seatalk.ApparentWindSpeed
	trip      *float64
	total     *float64
	date      *seatalk.Date
}

func NewTranslator(talker string) *Translator {
	if talker == "" {
		talker = DefaultTalker
	}
	return &Translator{talker: talker}
}

// Translate returns the sentences d produces, or nil when it has no NMEA
// counterpart yet.
func (t *Translator) Translate(d seatalk.Datagram) []nmea.Sentence {
	switch v := d.(type) {
	case seatalk.Depth:
		return t.one("DBT",
			num(v.Feet, 1), "f",
			num(v.Feet*metersPerFoot, 2), "M",
			num(v.Feet/feetPerFathom, 2), "F")
	case seatalk.ApparentWindAngle:
		angle := v.Degrees
		t.windAngle = &angle
		return t.wind()
	case seatalk.ApparentWindSpeed:
		speed := v
		t.windSpeed = &speed
		return t.wind()
	case seatalk.Speed:
		return t.waterSpeed(v.Knots)
	case seatalk.Speed2:
		return t.waterSpeed(v.Knots)
	case seatalk.WaterTemperature:
		if v.SensorDefective() {
			return nil
		}
		return t.one("MTW", strconv.Itoa(v.Celsius)+".0", "C")
	case seatalk.WaterTemperature2:
		return t.one("MTW", num(v.Celsius, 1), "C")
	case seatalk.TripMileage:
		trip := v.NauticalMiles
		t.trip = &trip
		return t.mileage()
	case seatalk.TotalMileage:
		total := v.NauticalMiles
		t.total = &total
		return t.mileage()
	case seatalk.Date:
		date := v
		t.date = &date
		return nil
	case seatalk.GMTTime:
		if t.date == nil {
			return nil
		}
		return t.one("ZDA",
			fmt.Sprintf("%02d%02d%02d.00", v.Hour, v.Minute, v.Second),
			fmt.Sprintf("%02d", t.date.Day),
			fmt.Sprintf("%02d", t.date.Month),
			strconv.Itoa(t.date.Year),
			"", "")
	default:
		return nil
	}
}

func (t *Translator) one(typ string, fields ...string) []nmea.Sentence {
	return []nmea.Sentence{nmea.New(t.talker, typ, fields...)}
}

func (t *Translator) wind() []nmea.Sentence {
	if t.windAngle == nil || t.windSpeed == nil {
		return nil
	}
	unit := unitKnots
	if t.windSpeed.Unit == seatalk.WindMetersPerSecond {
		unit = unitMetersPerS
	}
	return t.one("MWV", num(*t.windAngle, 1), windRelative, num(t.windSpeed.Knots, 1), unit, statusValid)
}

func (t *Translator) waterSpeed(knots float64) []nmea.Sentence {
	return t.one("VHW", "", "T", "", "M", num(knots, 2), "N", num(knots*kmhPerKnot, 2), "K")
}

func (t *Translator) mileage() []nmea.Sentence {
	return t.one("VLW", optional(t.total, 1), "N", optional(t.trip, 2), "N")
}

func num(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func optional(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return num(*v, prec)
}
