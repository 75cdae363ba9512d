package serial

import (
	"context"

	"github.com/jangala-dev/tinygo-lpuart/errcode"
)

// WaitReadable blocks until data is available, the port closes or ctx is done.
func (p *Port) WaitReadable(ctx context.Context) error {
	for {
		if p.Buffered() > 0 {
			return nil
		}
		if !p.open.Load() {
			return errcode.Closed
		}
		select {
		case <-p.notify:
			// re-check; the notification is coalesced
		case <-p.closed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RecvSomeContext blocks until at least one byte is available, then reads up to len(buf).
func (p *Port) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for {
		if n := p.TryRead(buf); n > 0 {
			return n, nil
		}
		if err := p.WaitReadable(ctx); err != nil {
			return 0, err
		}
	}
}

// RecvFullContext blocks until len(buf) bytes have been read or ctx is done.
func (p *Port) RecvFullContext(ctx context.Context, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		if n := p.TryRead(buf[read:]); n > 0 {
			read += n
			continue
		}
		if err := p.WaitReadable(ctx); err != nil {
			return read, err
		}
	}
	return read, nil
}

// RecvByteContext blocks for a single byte or until ctx is done.
func (p *Port) RecvByteContext(ctx context.Context) (byte, error) {
	for {
		if b, err := p.ReadByte(); err == nil {
			return b, nil
		}
		if err := p.WaitReadable(ctx); err != nil {
			return 0, err
		}
	}
}

// SendSomeContext queues up to len(buf) bytes, blocking until at least one
// byte is accepted or ctx is done.
func (p *Port) SendSomeContext(ctx context.Context, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for {
		if !p.open.Load() {
			return 0, errcode.Closed
		}
		if n := p.TryWrite(buf); n > 0 {
			return n, nil
		}
		select {
		case <-p.txNotify:
		case <-p.closed:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// FlushContext is Flush bounded by ctx.
func (p *Port) FlushContext(ctx context.Context) error {
	for {
		if p.tx.Used() == 0 && p.lower.TxEmpty() {
			return nil
		}
		select {
		case <-p.txNotify:
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := p.drain(p.drainTick()); err == nil {
				return nil
			}
		}
	}
}
