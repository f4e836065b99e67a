package transport

import (
	"context"
	"fmt"
	"io"
	"os"
)

// File replays bytes from a path through a monotonic cursor and appends
// writes. Every Read re-reads the file, so bytes appended meanwhile are
// picked up on the next call.
type File struct {
	base
	path   string
	cursor int
}

func NewFile(cfg Config) (*File, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("transport: file transport requires a path")
	}
	cs, err := lookupCharset(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	return &File{base: newBase(cfg.identity(), cs), path: cfg.Path}, nil
}

func (f *File) Initialize(ctx context.Context) error {
	first, err := f.begin()
	if err != nil || !first {
		return err
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrResourceUnavailable, f.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrResourceUnavailable, f.path)
	}
	f.initialized.Store(true)
	f.log.Debug().Int64("size", info.Size()).Msg("file opened for replay")
	return nil
}

// Read returns io.EOF once the cursor reaches the end of the file.
func (f *File) Read(ctx context.Context, n int) ([]byte, error) {
	if err := f.acquire(ctx); err != nil {
		return nil, err
	}
	defer f.release()
	if err := f.ready(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("transport: read %s: %w", f.path, err)
	}
	if f.cursor >= len(data) {
		return nil, io.EOF
	}
	chunk, _ := take(data[f.cursor:], n)
	f.cursor += len(chunk)
	return f.inbound(chunk), nil
}

func (f *File) Write(ctx context.Context, data []byte) error {
	if err := f.acquire(ctx); err != nil {
		return err
	}
	defer f.release()
	if err := f.ready(); err != nil {
		return err
	}
	payload := f.outbound(data)
	out, err := os.OpenFile(f.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("transport: open %s: %w", f.path, err)
	}
	defer out.Close()
	if _, err := out.Write(payload); err != nil {
		return fmt.Errorf("transport: append %s: %w", f.path, err)
	}
	return nil
}

// Flush has nothing to discard: reads and writes are unbuffered.
func (f *File) Flush(ctx context.Context) error {
	return nil
}

func (f *File) Cancel() error {
	f.markClosed()
	return nil
}

// Cursor is the number of bytes consumed so far.
func (f *File) Cursor() int {
	if err := f.acquire(context.Background()); err != nil {
		return f.cursor
	}
	defer f.release()
	return f.cursor
}
