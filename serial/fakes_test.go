package serial

import (
	"sync"

	"github.com/jangala-dev/tinygo-lpuart/errcode"
)

const statFraming uint32 = 1 << 0

// fakeLower is an in-memory lower half. The mutex stands in for the
// interrupt mask so tests can drive the ISR side from another goroutine.
type fakeLower struct {
	mu sync.Mutex

	up    Upper
	calls []string

	setupErr  error
	attachErr error

	rx     []byte
	status []uint32
	tx     []byte
	busy   bool // TxReady false
	empty  bool // TxEmpty
	rxInt  bool
	txInt  bool
	ls     LineSettings
}

func newFakeLower() *fakeLower {
	return &fakeLower{empty: true, ls: LineSettings{Baud: 115200, DataBits: 8, StopBits: 1}}
}

func (f *fakeLower) log(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeLower) Setup() error  { f.log("setup"); return f.setupErr }
func (f *fakeLower) Shutdown()     { f.log("shutdown") }
func (f *fakeLower) Attach() error { f.log("attach"); return f.attachErr }
func (f *fakeLower) Detach()       { f.log("detach") }
func (f *fakeLower) Bind(up Upper) { f.up = up }

func (f *fakeLower) Ioctl(cmd Cmd, arg any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ls, _ := arg.(*LineSettings)
	switch {
	case cmd == CmdGetLine && ls != nil:
		*ls = f.ls
	case cmd == CmdSetLine && ls != nil:
		f.ls = *ls
	default:
		return errcode.Unsupported
	}
	return nil
}

func (f *fakeLower) Receive() (byte, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, st := f.rx[0], f.status[0]
	f.rx, f.status = f.rx[1:], f.status[1:]
	return b, st
}

func (f *fakeLower) RxAvailable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rxInt && len(f.rx) > 0
}

func (f *fakeLower) RxInt(enable bool) {
	f.mu.Lock()
	f.rxInt = enable
	f.mu.Unlock()
	if enable {
		f.log("rxint on")
	} else {
		f.log("rxint off")
	}
}

func (f *fakeLower) Send(b byte) {
	f.mu.Lock()
	f.tx = append(f.tx, b)
	f.mu.Unlock()
}

func (f *fakeLower) TxReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.busy
}

func (f *fakeLower) TxEmpty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.empty
}

func (f *fakeLower) TxInt(enable bool) {
	f.mu.Lock()
	f.txInt = enable
	f.mu.Unlock()
	if enable && f.up != nil {
		f.up.XmitChars()
	}
}

// inject queues bytes with the given status and runs the receive side of
// the interrupt handler.
func (f *fakeLower) inject(status uint32, b ...byte) {
	f.mu.Lock()
	for _, c := range b {
		f.rx = append(f.rx, c)
		f.status = append(f.status, status)
	}
	armed := f.rxInt
	f.mu.Unlock()
	if armed {
		f.up.RecvChars()
	}
}

func (f *fakeLower) setBusy(v bool) {
	f.mu.Lock()
	f.busy = v
	f.mu.Unlock()
}

func (f *fakeLower) setEmpty(v bool) {
	f.mu.Lock()
	f.empty = v
	f.mu.Unlock()
}

func (f *fakeLower) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rx)
}

func (f *fakeLower) sent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.tx)
}

func (f *fakeLower) txArmed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txInt
}

func (f *fakeLower) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLower) LineErrors(st uint32) LineErrors {
	if st&statFraming != 0 {
		return ErrFraming
	}
	return 0
}

// flowLower adds input flow control: throttling disarms reception.
type flowLower struct {
	*fakeLower
	throttled bool
}

func (f *flowLower) RxFlowControl(n int, upper bool) bool {
	if upper {
		f.throttled = true
		f.fakeLower.mu.Lock()
		f.rxInt = false
		f.fakeLower.mu.Unlock()
		return true
	}
	f.throttled = false
	f.fakeLower.mu.Lock()
	f.rxInt = true
	f.fakeLower.mu.Unlock()
	return false
}

func contains(calls []string, s string) bool {
	for _, c := range calls {
		if c == s {
			return true
		}
	}
	return false
}
