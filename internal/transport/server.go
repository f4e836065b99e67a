package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danmuck/seabridge/internal/observability"
)

const acceptRetryDelay = 50 * time.Millisecond

// Server binds a listening socket and serves any number of peers. Inbound
// bytes from every peer merge into one read queue; each write is broadcast
// to every connected peer.
type Server struct {
	base
	queued
	cfg Config

	ln   net.Listener
	life context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	// broadcast admits one drain task at a time so chunks reach peers in
	// the order they were written.
	broadcast chan struct{}

	mu    sync.Mutex
	peers map[string]*peer
}

type peer struct {
	id      string
	conn    net.Conn
	remote  string
	ctx     context.Context
	cancel  context.CancelFunc
	drained chan struct{}
}

func NewServer(cfg Config) (*Server, error) {
	cs, err := lookupCharset(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	id := cfg.identity()
	return &Server{
		base:      newBase(id, cs),
		queued:    newQueued(id),
		cfg:       cfg,
		broadcast: make(chan struct{}, 1),
		peers:     make(map[string]*peer),
	}, nil
}

func (s *Server) Initialize(ctx context.Context) error {
	first, err := s.begin()
	if err != nil || !first {
		return err
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.address())
	if err != nil {
		return fmt.Errorf("%w: listen %s: %v", ErrResourceUnavailable, s.cfg.address(), err)
	}
	s.ln = ln
	s.life, s.stop = context.WithCancel(context.Background())
	s.initialized.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("server listening")
	return nil
}

// Addr is the bound address, useful when Port was 0.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// acceptLoop runs until Cancel. Accept failures are logged and retried.
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.life.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn().Err(err).Msg("accept failed")
			if sleepContext(s.life, acceptRetryDelay) != nil {
				return
			}
			continue
		}
		s.addPeer(conn)
	}
}

func (s *Server) addPeer(conn net.Conn) {
	ctx, cancel := context.WithCancel(s.life)
	p := &peer{
		id:      uuid.NewString(),
		conn:    conn,
		remote:  conn.RemoteAddr().String(),
		ctx:     ctx,
		cancel:  cancel,
		drained: make(chan struct{}),
	}

	s.mu.Lock()
	s.peers[p.id] = p
	active := len(s.peers)
	s.mu.Unlock()
	observability.SetPeersConnected(s.name, active)
	s.log.Info().Str("peer", p.id).Str("remote", p.remote).Int("active_peers", active).Msg("peer connected")

	s.wg.Add(2)
	go s.drain(p)
	go s.serve(p)
}

// serve merges the peer's inbound bytes into the read queue and removes
// the peer once its connection ends.
func (s *Server) serve(p *peer) {
	defer s.wg.Done()
	stopWatch := context.AfterFunc(p.ctx, func() { _ = p.conn.Close() })
	defer stopWatch()

	if err := pumpConn(p.conn, s.reads); err != nil && p.ctx.Err() == nil {
		s.log.Warn().Err(err).Str("peer", p.id).Msg("peer read failed")
	}

	p.cancel()
	<-p.drained
	_ = p.conn.Close()

	s.mu.Lock()
	delete(s.peers, p.id)
	active := len(s.peers)
	s.mu.Unlock()
	observability.SetPeersConnected(s.name, active)
	s.log.Info().Str("peer", p.id).Str("remote", p.remote).Int("active_peers", active).Msg("peer disconnected")
}

// drain is the peer's outbound task: it takes chunks from the shared write
// queue and broadcasts each one to all connected peers.
func (s *Server) drain(p *peer) {
	defer s.wg.Done()
	defer close(p.drained)
	for {
		select {
		case s.broadcast <- struct{}{}:
		case <-p.ctx.Done():
			return
		}
		chunk, err := s.writes.Get(p.ctx, nil)
		if err != nil {
			<-s.broadcast
			return
		}
		s.sendAll(chunk)
		<-s.broadcast
	}
}

// sendAll writes chunk to every peer. A failed peer has its connection
// closed; its own serve task then removes it.
func (s *Server) sendAll(chunk []byte) {
	for _, p := range s.snapshotPeers() {
		if err := writeConn(p.conn, chunk); err != nil {
			s.log.Warn().Err(err).Str("peer", p.id).Msg("peer write failed, closing")
			_ = p.conn.Close()
		}
	}
}

func (s *Server) snapshotPeers() []*peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*peer, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, p)
	}
	return out
}

func (s *Server) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

func (s *Server) Read(ctx context.Context, n int) ([]byte, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	if err := s.ready(); err != nil {
		return nil, err
	}
	chunk, err := s.readQueued(ctx, s.life.Done(), n)
	if err != nil {
		return nil, err
	}
	return s.inbound(chunk), nil
}

// Write queues data for broadcast. A full queue drops the data with a
// warning; it never blocks and never fails.
func (s *Server) Write(ctx context.Context, data []byte) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	if err := s.ready(); err != nil {
		return err
	}
	payload := s.outbound(data)
	if len(payload) == 0 {
		return nil
	}
	if s.PeerCount() == 0 {
		s.log.Debug().Int("bytes", len(payload)).Msg("no peers connected, queueing")
	}
	s.writes.TryPut(append([]byte(nil), payload...))
	return nil
}

// Flush keeps queued data: a socket stream holds whole sentences behind a
// bad one, and the write queue belongs to the other direction.
func (s *Server) Flush(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return s.ready()
}

// Cancel stops the accept loop, disconnects every peer and waits for all
// of their tasks.
func (s *Server) Cancel() error {
	if !s.markClosed() {
		return nil
	}
	if s.stop == nil {
		return nil
	}
	s.stop()
	err := s.ln.Close()
	for _, p := range s.snapshotPeers() {
		_ = p.conn.Close()
	}
	s.wg.Wait()
	s.log.Info().Msg("server stopped")
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
