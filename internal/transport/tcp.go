package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

const (
	connReadBuffer = 1024
	connWriteLimit = 5 * time.Second
)

// queued is the shared read side of the socket backends: inbound chunks
// wait in reads and a partly consumed chunk waits in pending. Both are only
// touched under the exclusion gate.
type queued struct {
	reads   *dropQueue
	writes  *dropQueue
	pending []byte
}

func newQueued(owner string) queued {
	return queued{
		reads:  newDropQueue(owner, "read", QueueCapacity),
		writes: newDropQueue(owner, "write", QueueCapacity),
	}
}

func (q *queued) readQueued(ctx context.Context, closed <-chan struct{}, n int) ([]byte, error) {
	if len(q.pending) == 0 {
		chunk, err := q.reads.Get(ctx, closed)
		if err != nil {
			return nil, err
		}
		q.pending = chunk
	}
	out, rest := take(q.pending, n)
	q.pending = rest
	return out, nil
}

// pumpConn copies inbound bytes from conn into reads until the connection
// ends. A clean remote close or a local close returns nil.
func pumpConn(conn net.Conn, reads *dropQueue) error {
	buf := make([]byte, connReadBuffer)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			reads.TryPut(chunk)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func writeConn(conn net.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(connWriteLimit))
	_, err := conn.Write(data)
	return err
}
