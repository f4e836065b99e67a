// Package transport moves raw bytes between the gateway and the outside
// world: a TCP server with many peers, a reconnecting TCP client, a serial
// port, a replay file and a console sink.
//
// Every backend serializes its own Read and Write calls behind one gate and
// never blocks a producer on a full queue; overflow is dropped and counted.
package transport
