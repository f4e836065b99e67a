// Package seatalk decodes and encodes SeaTalk-1 datagrams.
//
// A frame is a command byte, an attribute byte whose low nibble gives the
// number of data bytes minus one and whose high nibble may carry data, then
// the data bytes. The dispatch registry is static: adding a command is a new
// registry entry plus its datagram type.
package seatalk
