package nmea

import "sort"

type tag struct {
	description string
	minFields   int
}

// tags is the static dispatch table of recognised sentence types.
var tags = map[string]tag{
	"DBT": {"depth below transducer", 6},
	"DPT": {"depth of water", 2},
	"GGA": {"global positioning fix data", 14},
	"HDG": {"heading, deviation and variation", 5},
	"HDM": {"heading, magnetic", 2},
	"MTW": {"mean temperature of water", 2},
	"MWV": {"wind speed and angle", 5},
	"RMC": {"recommended minimum navigation information", 11},
	"RSA": {"rudder sensor angle", 4},
	"VHW": {"water speed and heading", 8},
	"VLW": {"distance traveled through water", 4},
	"XDR": {"transducer measurement", 4},
	"ZDA": {"time and date", 6},
}

// Known reports whether typ is in the tag table.
func Known(typ string) bool {
	_, ok := tags[typ]
	return ok
}

// Describe returns the human description of typ, or "" if unknown.
func Describe(typ string) string {
	return tags[typ].description
}

// Types lists the recognised sentence types in order.
func Types() []string {
	out := make([]string, 0, len(tags))
	for t := range tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
