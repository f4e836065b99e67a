// Package protocol owns the wire-level contracts shared by the SeaTalk and
// NMEA codecs.
//
// Ownership boundary:
// - decode error taxonomy and recoverability classification
// - bidirectional value maps for enumerated datagram fields
// - frame primitives (frame/), datagram registry (seatalk/), sentences (nmea/)
package protocol
