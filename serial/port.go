// serial/port.go

package serial

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/jangala-dev/tinygo-lpuart/errcode"
	"github.com/jangala-dev/tinygo-lpuart/internal/mathx"
	"tinygo.org/x/drivers"
)

// ErrBufferEmpty is returned by ReadByte when no data is buffered.
var ErrBufferEmpty = errors.New("serial buffer empty")

// PortConfig sizes the rings and sets the flow-control watermarks.
type PortConfig struct {
	RxSize int // bytes, rounded up to a power of two; 0 means DefaultRingSize
	TxSize int

	// Watermarks in percent of RxSize. Reaching UpperWatermark asks the lower
	// half to throttle; draining to LowerWatermark releases it. Zero values
	// mean 100 (ring full) and 0 (ring empty).
	UpperWatermark int
	LowerWatermark int

	// Console ports stay set up and attached across Close.
	Console bool
}

// Stats are cumulative counters since Open.
type Stats struct {
	RxBytes   uint32
	TxBytes   uint32
	Dropped   uint32 // received while the RX ring was full
	Overrun   uint32
	Framing   uint32
	Noise     uint32
	Parity    uint32
	Throttles uint32 // flow-control activations
}

// Port is the upper half for one lower-half driver. Foreground calls are
// safe from one goroutine at a time; RecvChars and XmitChars run in the
// lower half's interrupt context.
type Port struct {
	lower Lower
	flow  FlowController
	dec   ErrorDecoder
	cfg   PortConfig

	rx *RingBuffer
	tx *RingBuffer

	notify   chan struct{} // coalesced RX readiness
	txNotify chan struct{} // coalesced TX progress/drain
	closed   chan struct{}

	upperN int
	lowerN int
	baud   uint32

	open      atomic.Bool
	attached  bool
	throttled atomic.Bool

	rxBytes, txBytes, dropped    atomic.Uint32
	overrun, framing, noise, par atomic.Uint32
	throttles                    atomic.Uint32
}

var _ drivers.UART = (*Port)(nil)
var _ Upper = (*Port)(nil)

// NewPort builds the upper half for lower and binds itself to it.
func NewPort(lower Lower, cfg PortConfig) *Port {
	p := &Port{
		lower:    lower,
		cfg:      cfg,
		rx:       NewRingBuffer(cfg.RxSize),
		tx:       NewRingBuffer(cfg.TxSize),
		notify:   make(chan struct{}, 1),
		txNotify: make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
	p.flow, _ = lower.(FlowController)
	p.dec, _ = lower.(ErrorDecoder)

	upper := cfg.UpperWatermark
	if upper == 0 {
		upper = 100
	}
	upper = mathx.Clamp(upper, 1, 100)
	lowerPct := mathx.Clamp(cfg.LowerWatermark, 0, upper-1)
	// upperN >= 1: a throttled ring always holds a byte to read.
	size := p.rx.Size()
	p.upperN = mathx.Clamp(size*upper/100, 1, size)
	p.lowerN = mathx.Clamp(size*lowerPct/100, 0, p.upperN-1)

	close(p.closed)
	lower.Bind(p)
	return p
}

// Open sets up the hardware, attaches its interrupt and arms reception.
func (p *Port) Open() error {
	if p.open.Load() {
		return nil
	}
	if !p.cfg.Console || !p.attached {
		if err := p.lower.Setup(); err != nil {
			return errcode.Wrap("serial.Open", err)
		}
	}
	if !p.attached {
		if err := p.lower.Attach(); err != nil {
			p.lower.Shutdown()
			return errcode.Wrap("serial.Open", err)
		}
		p.attached = true
	}

	var ls LineSettings
	if p.lower.Ioctl(CmdGetLine, &ls) == nil {
		p.baud = ls.Baud
	}

	p.rx.Clear()
	p.tx.Clear()
	p.resetStats()
	p.throttled.Store(false)
	p.closed = make(chan struct{})
	p.open.Store(true)

	p.lower.RxInt(true)

	// Prime the initial "writable" notification (TX ring starts empty).
	p.signal(p.txNotify)
	return nil
}

// Close stops reception, drains pending output and releases the hardware.
// Console ports keep their interrupt attached.
func (p *Port) Close() error {
	if !p.open.Load() {
		return nil
	}
	p.lower.RxInt(false)
	_ = p.drain(p.closeTimeout())

	p.open.Store(false)
	close(p.closed)

	p.lower.TxInt(false)
	if !p.cfg.Console {
		p.lower.Detach()
		p.lower.Shutdown()
		p.attached = false
	}
	return nil
}

// closeTimeout bounds the drain in Close: the time to send a full TX ring
// at the configured baud, plus slack.
func (p *Port) closeTimeout() time.Duration {
	if p.baud == 0 {
		return time.Second
	}
	perChar := 10 * time.Second / time.Duration(p.baud)
	return time.Duration(p.tx.Size())*perChar + 100*time.Millisecond
}

// Ioctl forwards a control request to the lower half.
func (p *Port) Ioctl(cmd Cmd, arg any) error {
	err := p.lower.Ioctl(cmd, arg)
	if err == nil && cmd == CmdSetLine {
		if ls, ok := arg.(*LineSettings); ok && ls != nil {
			p.baud = ls.Baud
		}
	}
	return err
}

// LineSettings reports the lower half's current line settings.
func (p *Port) LineSettings() (LineSettings, error) {
	var ls LineSettings
	err := p.Ioctl(CmdGetLine, &ls)
	return ls, err
}

// SetLineSettings reconfigures the line.
func (p *Port) SetLineSettings(ls LineSettings) error {
	return p.Ioctl(CmdSetLine, &ls)
}

// ---------------- interrupt context ----------------

// RecvChars moves every available byte from the lower half into the RX ring.
// Bytes arriving while the ring is full are counted and discarded unless the
// lower half can throttle the sender.
func (p *Port) RecvChars() {
	got := false
	for p.lower.RxAvailable() {
		n := p.rx.Used()
		if p.flow != nil && (n >= p.upperN || p.rx.Free() == 0) {
			if p.flow.RxFlowControl(n, true) {
				p.throttled.Store(true)
				p.throttles.Add(1)
				break
			}
		}

		b, status := p.lower.Receive()
		if p.dec != nil {
			p.countErrors(p.dec.LineErrors(status))
		}
		if !p.rx.Put(b) {
			p.dropped.Add(1)
			continue
		}
		p.rxBytes.Add(1)
		got = true
	}
	if got {
		p.signal(p.notify)
	}
}

// XmitChars moves bytes from the TX ring to the lower half while it can take
// them, and disarms the TX interrupt once the ring is empty.
func (p *Port) XmitChars() {
	sent := false
	for p.tx.Used() > 0 && p.lower.TxReady() {
		b, _ := p.tx.Get()
		p.lower.Send(b)
		p.txBytes.Add(1)
		sent = true
	}
	if p.tx.Used() == 0 {
		p.lower.TxInt(false)
	}
	if sent || p.tx.Used() == 0 {
		p.signal(p.txNotify)
	}
}

func (p *Port) countErrors(e LineErrors) {
	if e&ErrOverrun != 0 {
		p.overrun.Add(1)
	}
	if e&ErrFraming != 0 {
		p.framing.Add(1)
	}
	if e&ErrNoise != 0 {
		p.noise.Add(1)
	}
	if e&ErrParity != 0 {
		p.par.Add(1)
	}
}

// signal performs a coalesced, non-blocking send.
func (p *Port) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// ---------------- foreground: RX ----------------

// Readable returns a coalesced notification for RX readiness.
// The channel is level-coalesced; callers must re-check state after waking.
func (p *Port) Readable() <-chan struct{} { return p.notify }

// Writable returns a coalesced notification for TX progress or space.
func (p *Port) Writable() <-chan struct{} { return p.txNotify }

// Buffered returns the number of bytes currently stored in the RX ring.
func (p *Port) Buffered() int { return p.rx.Used() }

// TxFree returns the remaining space in the TX ring in bytes.
func (p *Port) TxFree() int { return p.tx.Free() }

// ReadByte reads a single byte from the RX ring without blocking.
func (p *Port) ReadByte() (byte, error) {
	b, ok := p.rx.Get()
	if !ok {
		return 0, ErrBufferEmpty
	}
	p.release()
	return b, nil
}

// TryRead returns immediately with up to len(p) bytes copied from the RX ring.
// A return value of 0 means "no data now".
func (p *Port) TryRead(buf []byte) int {
	n := 0
	for n < len(buf) {
		b, ok := p.rx.Get()
		if !ok {
			break
		}
		buf[n] = b
		n++
	}
	if n > 0 {
		p.release()
	}
	return n
}

// Read implements io.Reader. It blocks until at least one byte is available
// or the port is closed.
func (p *Port) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for {
		if n := p.TryRead(buf); n > 0 {
			return n, nil
		}
		if !p.open.Load() {
			return 0, errcode.Closed
		}
		select {
		case <-p.notify: // coalesced wake-up; must re-check
		case <-p.closed:
		}
	}
}

// release re-enables reception once a throttled ring drains to the lower
// watermark.
func (p *Port) release() {
	if p.flow == nil || !p.throttled.Load() {
		return
	}
	n := p.rx.Used()
	if n > p.lowerN {
		return
	}
	if !p.flow.RxFlowControl(n, false) {
		p.throttled.Store(false)
	}
}

// ---------------- foreground: TX ----------------

// TryWrite queues up to len(buf) bytes without blocking and returns how
// many were accepted.
func (p *Port) TryWrite(buf []byte) int {
	if !p.open.Load() {
		return 0
	}
	n := 0
	for n < len(buf) && p.tx.Put(buf[n]) {
		n++
	}
	if n > 0 {
		// Arming TX also runs a first XmitChars pass.
		p.lower.TxInt(true)
	}
	return n
}

// Write implements io.Writer. It blocks until all bytes in buf have been
// queued; it does not wait for them to leave the wire (see Flush).
func (p *Port) Write(buf []byte) (int, error) {
	sent := 0
	for sent < len(buf) {
		if !p.open.Load() {
			return sent, errcode.Closed
		}
		if n := p.TryWrite(buf[sent:]); n > 0 {
			sent += n
			continue
		}
		select {
		case <-p.txNotify:
		case <-p.closed:
		}
	}
	return sent, nil
}

// WriteByte writes a single byte with the same blocking behaviour as Write.
func (p *Port) WriteByte(c byte) error {
	_, err := p.Write([]byte{c})
	return err
}

// Writev writes the provided buffers in sequence with the same blocking
// behaviour as Write.
func (p *Port) Writev(bufs ...[]byte) (int, error) {
	sent := 0
	for _, b := range bufs {
		n, err := p.Write(b)
		sent += n
		if err != nil {
			return sent, err
		}
	}
	return sent, nil
}

// Flush blocks until the TX ring is empty and the lower half reports its
// transmitter empty. There is no interrupt for the final edge, so Flush
// polls on a short tick in addition to txNotify wakes.
func (p *Port) Flush() error {
	return p.drain(0)
}

func (p *Port) drain(limit time.Duration) error {
	var deadline <-chan time.Time
	if limit > 0 {
		t := time.NewTimer(limit)
		defer t.Stop()
		deadline = t.C
	}
	tick := p.drainTick()
	for {
		if p.tx.Used() == 0 && p.lower.TxEmpty() {
			return nil
		}
		select {
		case <-p.txNotify:
		case <-time.After(tick):
		case <-deadline:
			return errcode.Timeout
		}
	}
}

// drainTick is about two character times at 8N1, with a lower bound.
func (p *Port) drainTick() time.Duration {
	if p.baud == 0 {
		return 50 * time.Microsecond
	}
	t := 2 * 10 * (time.Second / time.Duration(p.baud))
	if t < 20*time.Microsecond {
		t = 20 * time.Microsecond
	}
	return t
}

// ---------------- stats ----------------

// Stats returns a copy of the port counters.
func (p *Port) Stats() Stats {
	return Stats{
		RxBytes:   p.rxBytes.Load(),
		TxBytes:   p.txBytes.Load(),
		Dropped:   p.dropped.Load(),
		Overrun:   p.overrun.Load(),
		Framing:   p.framing.Load(),
		Noise:     p.noise.Load(),
		Parity:    p.par.Load(),
		Throttles: p.throttles.Load(),
	}
}

// Throttled reports whether input flow control is currently asserted.
func (p *Port) Throttled() bool { return p.throttled.Load() }

func (p *Port) resetStats() {
	for _, c := range []*atomic.Uint32{
		&p.rxBytes, &p.txBytes, &p.dropped,
		&p.overrun, &p.framing, &p.noise, &p.par, &p.throttles,
	} {
		c.Store(0)
	}
}
