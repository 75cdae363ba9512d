package lpuart

import (
	"testing"

	"github.com/jangala-dev/tinygo-lpuart/irq"
)

// fakeMasker models nested global interrupt masking.
type fakeMasker struct {
	depth  int
	enters int

	onEnter func() // called when the outermost section opens
}

func (m *fakeMasker) Disable() uintptr {
	if m.depth == 0 && m.onEnter != nil {
		m.onEnter()
	}
	s := uintptr(m.depth)
	m.depth++
	m.enters++
	return s
}

func (m *fakeMasker) Restore(state uintptr) { m.depth = int(state) }

type regOp struct {
	write bool
	off   uintptr
	val   uint32
	depth int    // critical-section depth at the time of access
	ctrl  uint32 // CTRL at the time of access
}

// fakeRegs is an LPUART register block. STAT error and event flags are
// write-one-to-clear, reading DATA pops the receive queue and drops RDRF
// once it is empty, and writing DATA records the byte. TDRE is always set.
type fakeRegs struct {
	mask *fakeMasker
	r    map[uintptr]uint32
	ops  []regOp
	rx   []byte
	tx   []byte
}

func newFakeRegs(m *fakeMasker) *fakeRegs {
	f := &fakeRegs{mask: m, r: map[uintptr]uint32{}}
	f.r[offSTAT] = statTDRE | statTC
	return f
}

func (f *fakeRegs) Load(off uintptr) uint32 {
	v := f.r[off]
	if off == offDATA {
		v = 0
		if len(f.rx) > 0 {
			v = uint32(f.rx[0])
			f.rx = f.rx[1:]
		}
		if len(f.rx) == 0 {
			f.r[offSTAT] &^= statRDRF
		}
	}
	f.ops = append(f.ops, regOp{off: off, val: v, depth: f.mask.depth, ctrl: f.r[offCTRL]})
	return v
}

func (f *fakeRegs) Store(off uintptr, v uint32) {
	f.ops = append(f.ops, regOp{write: true, off: off, val: v, depth: f.mask.depth, ctrl: f.r[offCTRL]})
	switch off {
	case offSTAT:
		const writable = statBRK13 | statRXINV | statMSBF | statRWUID
		cur := f.r[offSTAT] &^ (v & statW1C)
		f.r[offSTAT] = cur&^writable | v&writable
	case offDATA:
		f.tx = append(f.tx, byte(v))
	default:
		f.r[off] = v
	}
}

// receive queues bytes on the line and raises RDRF.
func (f *fakeRegs) receive(b ...byte) {
	f.rx = append(f.rx, b...)
	f.r[offSTAT] |= statRDRF
}

func (f *fakeRegs) raise(bits uint32) { f.r[offSTAT] |= bits }

func (f *fakeRegs) stat() uint32 { return f.r[offSTAT] }
func (f *fakeRegs) ctrl() uint32 { return f.r[offCTRL] }

func (f *fakeRegs) clearOps() { f.ops = f.ops[:0] }

// index returns the position of the first op matching write/off, or -1.
func (f *fakeRegs) index(write bool, off uintptr) int {
	for i, op := range f.ops {
		if op.write == write && op.off == off {
			return i
		}
	}
	return -1
}

func (f *fakeRegs) count(write bool, off uintptr) int {
	n := 0
	for _, op := range f.ops {
		if op.write == write && op.off == off {
			n++
		}
	}
	return n
}

// fakeUpper drains and fills through the lower half the way the serial
// layer does.
type fakeUpper struct {
	u      *UART
	recv   int
	xmit   int
	got    []byte
	status []uint32
	queue  []byte
	keepTx bool // leave TX armed when the queue is empty
}

func (f *fakeUpper) RecvChars() {
	f.recv++
	for f.u.RxAvailable() {
		b, st := f.u.Receive()
		f.got = append(f.got, b)
		f.status = append(f.status, st)
	}
}

func (f *fakeUpper) XmitChars() {
	f.xmit++
	for len(f.queue) > 0 && f.u.TxReady() {
		f.u.Send(f.queue[0])
		f.queue = f.queue[1:]
	}
	if len(f.queue) == 0 && !f.keepTx {
		f.u.TxInt(false)
	}
}

type rig struct {
	u    *UART
	regs *fakeRegs
	mask *fakeMasker
	irqs *irq.Table
	up   *fakeUpper
}

const testIRQ irq.IRQ = 30

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	if cfg.IRQ == 0 {
		cfg.IRQ = testIRQ
	}
	if cfg.Clock == 0 {
		cfg.Clock = 48000000
	}
	m := &fakeMasker{}
	regs := newFakeRegs(m)
	tab := &irq.Table{}
	u := New(cfg, regs, m, tab)
	up := &fakeUpper{u: u}
	u.Bind(up)
	return &rig{u: u, regs: regs, mask: m, irqs: tab, up: up}
}

// open runs Setup and Attach the way the serial layer does on first open.
func (r *rig) open(t *testing.T) {
	t.Helper()
	if err := r.u.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := r.u.Attach(); err != nil {
		t.Fatalf("Attach: %v", err)
	}
}

// fire simulates the interrupt line asserting.
func (r *rig) fire() bool { return r.irqs.Dispatch(r.u.IRQ()) }

func (r *rig) assertShadowApplied(t *testing.T) {
	t.Helper()
	if hw := r.regs.ctrl() & ctrlAllInts; hw != r.u.ie {
		t.Fatalf("CTRL interrupt bits %#x != shadow %#x", hw, r.u.ie)
	}
	if r.mask.depth != 0 {
		t.Fatalf("critical section left open, depth=%d", r.mask.depth)
	}
}
