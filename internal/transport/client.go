package transport

import (
	"context"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/seabridge/internal/observability"
)

// Client keeps one logical outbound connection alive. A supervisor dials,
// serves the connection, and after any failure waits the backoff interval
// and dials again, until Cancel.
type Client struct {
	base
	queued
	cfg     Config
	backoff BackoffConfig
	rng     *rand.Rand

	life context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	connected atomic.Bool
	attempts  atomic.Int64
}

func NewClient(cfg Config) (*Client, error) {
	cs, err := lookupCharset(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	id := cfg.identity()
	return &Client{
		base:    newBase(id, cs),
		queued:  newQueued(id),
		cfg:     cfg,
		backoff: cfg.backoff(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Initialize starts the supervisor. Connection failures are retried in the
// background and never surface here.
func (c *Client) Initialize(ctx context.Context) error {
	first, err := c.begin()
	if err != nil || !first {
		return err
	}
	c.life, c.stop = context.WithCancel(context.Background())
	c.initialized.Store(true)
	c.wg.Add(1)
	go c.supervise()
	return nil
}

// Connected reports whether a session is currently being served.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Attempts counts dials made so far, successful or not.
func (c *Client) Attempts() int64 {
	return c.attempts.Load()
}

func (c *Client) supervise() {
	defer c.wg.Done()
	addr := c.cfg.address()
	var failures int
	for {
		conn, err := c.dial()
		if err != nil {
			if c.life.Err() != nil {
				return
			}
			failures++
			observability.RecordReconnect(c.name, false)
			delay := NextBackoffDelay(c.backoff, failures, c.rng)
			c.log.Warn().Err(err).Str("addr", addr).Int("attempt", failures).Dur("retry_in", delay).Msg("connect failed")
			if sleepContext(c.life, delay) != nil {
				return
			}
			continue
		}

		failures = 0
		observability.RecordReconnect(c.name, true)
		c.log.Info().Str("addr", addr).Str("local", conn.LocalAddr().String()).Msg("connected")
		c.connected.Store(true)
		err = c.session(conn)
		c.connected.Store(false)
		if c.life.Err() != nil {
			return
		}
		if err == nil {
			c.log.Info().Str("addr", addr).Msg("remote closed, reconnecting")
			continue
		}
		failures++
		delay := NextBackoffDelay(c.backoff, failures, c.rng)
		c.log.Warn().Err(err).Str("addr", addr).Dur("retry_in", delay).Msg("connection lost")
		if sleepContext(c.life, delay) != nil {
			return
		}
	}
}

func (c *Client) dial() (net.Conn, error) {
	c.attempts.Add(1)
	dialer := net.Dialer{Timeout: c.cfg.connectTimeout()}
	return dialer.DialContext(c.life, "tcp", c.cfg.address())
}

// session serves one connection: inbound bytes go to the read queue and
// the write queue drains to the socket. It returns when either side ends;
// nil means the remote closed cleanly.
func (c *Client) session(conn net.Conn) error {
	ctx, cancel := context.WithCancel(c.life)
	defer cancel()
	stopWatch := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stopWatch()

	errc := make(chan error, 2)
	go func() {
		errc <- pumpConn(conn, c.reads)
	}()
	go func() {
		for {
			chunk, err := c.writes.Get(ctx, nil)
			if err != nil {
				errc <- nil
				return
			}
			if err := writeConn(conn, chunk); err != nil {
				errc <- err
				return
			}
		}
	}()

	err := <-errc
	cancel()
	_ = conn.Close()
	<-errc
	return err
}

func (c *Client) Read(ctx context.Context, n int) ([]byte, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	if err := c.ready(); err != nil {
		return nil, err
	}
	chunk, err := c.readQueued(ctx, c.life.Done(), n)
	if err != nil {
		return nil, err
	}
	return c.inbound(chunk), nil
}

// Write queues data for the current or next connection. A full queue drops
// the data with a warning.
func (c *Client) Write(ctx context.Context, data []byte) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	if err := c.ready(); err != nil {
		return err
	}
	payload := c.outbound(data)
	if len(payload) == 0 {
		return nil
	}
	c.writes.TryPut(append([]byte(nil), payload...))
	return nil
}

// Flush keeps queued data: a socket stream holds whole sentences behind a
// bad one, and the write queue belongs to the other direction.
func (c *Client) Flush(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	return c.ready()
}

// Cancel stops the active session and the supervisor and waits for both.
func (c *Client) Cancel() error {
	if !c.markClosed() {
		return nil
	}
	if c.stop == nil {
		return nil
	}
	c.stop()
	c.wg.Wait()
	c.log.Info().Msg("client stopped")
	return nil
}
