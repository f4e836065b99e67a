package seatalk

const dateEpoch = 2000

// GMTTime: 54 T1 RS HH. RST is twelve bits: minutes in the top six,
// seconds in the bottom six; T is its low nibble.
type GMTTime struct {
	Hour   int
	Minute int
	Second int
}

func (GMTTime) Command() Command { return CmdGMTTime }

func (g GMTTime) encode() (byte, []byte, error) {
	if g.Hour < 0 || g.Hour > 23 || g.Minute < 0 || g.Minute > 59 || g.Second < 0 || g.Second > 59 {
		return 0, nil, invalid("time %02d:%02d:%02d out of range", g.Hour, g.Minute, g.Second)
	}
	rst := g.Minute<<6 | g.Second
	return byte(rst & 0x0F), []byte{byte(rst >> 4), byte(g.Hour)}, nil
}

func decodeGMTTime(nibble byte, data []byte) (Datagram, error) {
	rst := int(data[0])<<4 | int(nibble)
	g := GMTTime{Hour: int(data[1]), Minute: rst >> 6, Second: rst & 0x3F}
	if g.Hour > 23 || g.Minute > 59 || g.Second > 59 {
		return nil, invalid("time %02d:%02d:%02d out of range", g.Hour, g.Minute, g.Second)
	}
	return g, nil
}

// Date: 56 M1 DD YY, year counted from 2000.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (Date) Command() Command { return CmdDate }

func (d Date) encode() (byte, []byte, error) {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return 0, nil, invalid("date month=%d day=%d out of range", d.Month, d.Day)
	}
	if d.Year < dateEpoch || d.Year > dateEpoch+0xFF {
		return 0, nil, invalid("year %d outside %d..%d", d.Year, dateEpoch, dateEpoch+0xFF)
	}
	return byte(d.Month), []byte{byte(d.Day), byte(d.Year - dateEpoch)}, nil
}

func decodeDate(nibble byte, data []byte) (Datagram, error) {
	d := Date{Year: dateEpoch + int(data[1]), Month: int(nibble), Day: int(data[0])}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return nil, invalid("date month=%d day=%d out of range", d.Month, d.Day)
	}
	return d, nil
}
