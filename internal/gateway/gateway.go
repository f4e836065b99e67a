package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/seabridge/internal/config"
	"github.com/danmuck/seabridge/internal/device"
	"github.com/danmuck/seabridge/internal/observability"
	"github.com/danmuck/seabridge/internal/protocol/nmea"
	"github.com/danmuck/seabridge/internal/protocol/seatalk"
	"github.com/danmuck/seabridge/internal/transport"
)

var ErrAlreadyRan = errors.New("gateway: already ran")

// managed is the lifecycle both device flavors share.
type managed interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
	Pending() int
	Done() <-chan struct{}
	Transport() transport.Transport
}

type deviceEntry struct {
	protocol config.Protocol
	dev      managed
}

// Gateway owns every device, sink transport and bridge named by a config.
type Gateway struct {
	name    string
	devices []deviceEntry
	seatalk map[string]*device.Device[seatalk.Datagram]
	nmea    []*device.Device[nmea.Sentence]
	sinks   map[string]transport.Transport
	order   []string
	bridges []*Bridge
	closers []io.Closer
	log     zerolog.Logger

	ran      atomic.Bool
	running  atomic.Bool
	started  time.Time
	stopOnce sync.Once
}

// New builds the topology without touching any resource.
func New(cfg config.Gateway) (*Gateway, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	g := &Gateway{
		name:    cfg.Name,
		seatalk: make(map[string]*device.Device[seatalk.Datagram]),
		sinks:   make(map[string]transport.Transport),
		log:     log.With().Str("gateway", cfg.Name).Logger(),
	}
	for _, dc := range cfg.Devices {
		if err := g.addDevice(cfg, dc); err != nil {
			g.close()
			return nil, fmt.Errorf("device %s: %w", dc.Name, err)
		}
	}
	for _, bc := range cfg.Bridges {
		sink, err := g.sink(cfg, bc.To)
		if err != nil {
			g.close()
			return nil, fmt.Errorf("bridge %s: %w", bc.Name, err)
		}
		g.bridges = append(g.bridges, NewBridge(bc.Name, g.seatalk[bc.From], sink, bc.Talker))
	}
	return g, nil
}

func (g *Gateway) addDevice(cfg config.Gateway, dc config.DeviceConfig) error {
	tc, _ := cfg.TransportByName(dc.Transport)
	t, err := transport.New(tc)
	if err != nil {
		return err
	}
	var raw io.Writer
	if rc, ok := dc.RawLogSettings(); ok {
		w := observability.NewRawLog(rc)
		g.closers = append(g.closers, w)
		raw = w
	}

	switch dc.Protocol {
	case config.ProtocolSeaTalk:
		codec, err := dc.SeaTalkCodec()
		if err != nil {
			return err
		}
		d := device.NewSeaTalkDevice(dc.Name, t, codec)
		if raw != nil {
			d.WithRawLog(raw)
		}
		g.seatalk[dc.Name] = d
		g.devices = append(g.devices, deviceEntry{protocol: dc.Protocol, dev: d})
	case config.ProtocolNMEA:
		d := device.NewNMEADevice(dc.Name, t)
		if raw != nil {
			d.WithRawLog(raw)
		}
		g.nmea = append(g.nmea, d)
		g.devices = append(g.devices, deviceEntry{protocol: dc.Protocol, dev: d})
	}
	return nil
}

func (g *Gateway) sink(cfg config.Gateway, name string) (transport.Transport, error) {
	if t, ok := g.sinks[name]; ok {
		return t, nil
	}
	tc, _ := cfg.TransportByName(name)
	t, err := transport.New(tc)
	if err != nil {
		return nil, err
	}
	g.sinks[name] = t
	g.order = append(g.order, name)
	return t, nil
}

// Run starts sinks, then devices, then bridges, and blocks until ctx ends,
// a bridge fails or every device loop has exited. Everything is stopped
// before Run returns.
func (g *Gateway) Run(ctx context.Context) error {
	if !g.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRan
	}
	defer g.shutdown()

	for _, name := range g.order {
		if err := g.sinks[name].Initialize(ctx); err != nil {
			return fmt.Errorf("sink %s: %w", name, err)
		}
	}
	for _, e := range g.devices {
		if err := e.dev.Start(ctx); err != nil {
			return fmt.Errorf("device %s: %w", e.dev.Name(), err)
		}
	}
	g.started = time.Now()
	g.running.Store(true)
	g.log.Info().Int("devices", len(g.devices)).Int("bridges", len(g.bridges)).Msg("gateway running")

	group, gctx := errgroup.WithContext(ctx)
	for _, b := range g.bridges {
		b := b
		group.Go(func() error { return b.Run(gctx) })
	}
	for _, d := range g.nmea {
		d := d
		group.Go(func() error { return watch(gctx, d) })
	}
	ended := make(chan struct{})
	go func() {
		for _, e := range g.devices {
			<-e.dev.Done()
		}
		close(ended)
	}()
	group.Go(func() error {
		select {
		case <-gctx.Done():
			g.shutdown()
		case <-ended:
			// Bridges drain what is queued and return on their own.
			g.log.Info().Msg("all sources ended")
		}
		return nil
	})
	err := group.Wait()
	g.log.Info().Err(err).Msg("gateway stopped")
	return err
}

// watch consumes sentences from a device no bridge drains.
func watch(ctx context.Context, d *device.Device[nmea.Sentence]) error {
	for {
		s, err := d.Receive(ctx)
		if err != nil {
			return nil
		}
		log.Debug().
			Str("device", d.Name()).
			Str("talker", s.Talker).
			Str("type", s.Type).
			Bool("known", s.Known).
			Strs("fields", s.Fields).
			Msg("sentence")
	}
}

func (g *Gateway) shutdown() {
	g.stopOnce.Do(func() {
		g.running.Store(false)
		for _, e := range g.devices {
			if err := e.dev.Stop(); err != nil {
				g.log.Warn().Err(err).Str("device", e.dev.Name()).Msg("device stop failed")
			}
		}
		for _, name := range g.order {
			if err := g.sinks[name].Cancel(); err != nil {
				g.log.Warn().Err(err).Str("sink", name).Msg("sink cancel failed")
			}
		}
		g.close()
	})
}

func (g *Gateway) close() {
	for _, c := range g.closers {
		if err := c.Close(); err != nil {
			g.log.Warn().Err(err).Msg("raw log close failed")
		}
	}
	g.closers = nil
}

type DeviceStatus struct {
	Name      string `json:"name"`
	Protocol  string `json:"protocol"`
	Transport string `json:"transport"`
	Running   bool   `json:"running"`
	Pending   int    `json:"pending"`
}

type SinkStatus struct {
	Name      string `json:"name"`
	Transport string `json:"transport"`
	Peers     *int   `json:"peers,omitempty"`
}

type Status struct {
	Name    string         `json:"name"`
	Running bool           `json:"running"`
	Uptime  string         `json:"uptime"`
	Devices []DeviceStatus `json:"devices"`
	Sinks   []SinkStatus   `json:"sinks"`
	Bridges []BridgeStatus `json:"bridges"`
}

// Status is safe to call from any goroutine.
func (g *Gateway) Status() Status {
	running := g.running.Load()
	st := Status{
		Name:    g.name,
		Running: running,
		Devices: make([]DeviceStatus, 0, len(g.devices)),
		Sinks:   make([]SinkStatus, 0, len(g.order)),
		Bridges: make([]BridgeStatus, 0, len(g.bridges)),
	}
	if running {
		st.Uptime = time.Since(g.started).Round(time.Second).String()
	}
	for _, e := range g.devices {
		alive := running
		select {
		case <-e.dev.Done():
			alive = false
		default:
		}
		st.Devices = append(st.Devices, DeviceStatus{
			Name:      e.dev.Name(),
			Protocol:  string(e.protocol),
			Transport: e.dev.Transport().String(),
			Running:   alive,
			Pending:   e.dev.Pending(),
		})
	}
	for _, name := range g.order {
		t := g.sinks[name]
		ss := SinkStatus{Name: name, Transport: t.String()}
		if srv, ok := t.(*transport.Server); ok {
			peers := srv.PeerCount()
			ss.Peers = &peers
		}
		st.Sinks = append(st.Sinks, ss)
	}
	for _, b := range g.bridges {
		st.Bridges = append(st.Bridges, b.Status())
	}
	return st
}
