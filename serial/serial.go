// Package serial is the upper half of the serial stack: it owns the RX/TX
// ring buffers and the blocking io.Reader/io.Writer surface, and drives a
// hardware lower half through the Lower capability table.
//
// Control flows two ways. Foreground calls (Read, Write, Open, Close) reach
// the lower half through Lower. The lower half's interrupt handler calls back
// through Upper to move bytes between the hardware and the rings.
package serial

// Upper is what a lower half calls from interrupt context.
type Upper interface {
	// RecvChars drains the hardware receive path into the RX ring.
	RecvChars()
	// XmitChars fills the hardware transmit path from the TX ring.
	XmitChars()
}

// Lower is the capability table a hardware driver implements.
type Lower interface {
	Setup() error
	Shutdown()
	Attach() error
	Detach()
	Ioctl(cmd Cmd, arg any) error

	// Receive returns one byte and the raw status captured before it was read.
	Receive() (byte, uint32)
	RxInt(enable bool)
	RxAvailable() bool

	Send(b byte)
	TxInt(enable bool)
	TxReady() bool
	TxEmpty() bool

	// Bind registers the upper half the interrupt handler calls into.
	Bind(up Upper)
}

// FlowController is implemented by lower halves with input flow control.
// RxFlowControl is called with upper=true when the RX ring crosses its upper
// watermark and with upper=false when it drains past the lower one. It
// returns true when reception has been throttled.
type FlowController interface {
	RxFlowControl(nbuffered int, upper bool) bool
}

// LineErrors are per-byte receive errors.
type LineErrors uint8

const (
	ErrOverrun LineErrors = 1 << iota
	ErrFraming
	ErrNoise
	ErrParity
)

func (e LineErrors) String() string {
	if e == 0 {
		return "none"
	}
	s := ""
	add := func(bit LineErrors, name string) {
		if e&bit != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	add(ErrOverrun, "overrun")
	add(ErrFraming, "framing")
	add(ErrNoise, "noise")
	add(ErrParity, "parity")
	return s
}

// ErrorDecoder is implemented by lower halves that can classify the raw
// status returned by Receive.
type ErrorDecoder interface {
	LineErrors(status uint32) LineErrors
}
