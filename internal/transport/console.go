package transport

import (
	"context"
	"fmt"
	"runtime"
)

// Console is a sink with no real peer: writes are logged and reads yield
// a single zero byte.
type Console struct {
	base
}

func NewConsole(cfg Config) (*Console, error) {
	cs, err := lookupCharset(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	return &Console{base: newBase(cfg.identity(), cs)}, nil
}

func (c *Console) Initialize(ctx context.Context) error {
	first, err := c.begin()
	if err != nil || !first {
		return err
	}
	c.initialized.Store(true)
	c.log.Debug().Msg("console ready")
	return nil
}

func (c *Console) Read(ctx context.Context, n int) ([]byte, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	if err := c.ready(); err != nil {
		return nil, err
	}
	runtime.Gosched()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte{0}, nil
}

func (c *Console) Write(ctx context.Context, data []byte) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	if err := c.ready(); err != nil {
		return err
	}
	payload := c.outbound(data)
	c.log.Info().Int("bytes", len(payload)).Str("data", printable(payload)).Msg("console write")
	return nil
}

func (c *Console) Flush(ctx context.Context) error {
	return nil
}

func (c *Console) Cancel() error {
	c.markClosed()
	return nil
}

// printable renders text as-is and binary as hex.
func printable(b []byte) string {
	for _, c := range b {
		if (c < 0x20 && c != '\r' && c != '\n' && c != '\t') || c > 0x7E {
			return fmt.Sprintf("% X", b)
		}
	}
	return string(b)
}
