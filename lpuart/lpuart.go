// Package lpuart is an interrupt-driven lower half for the Kinetis low-power
// UART. It programs the line, keeps a software shadow of the interrupt-enable
// bits, and services the shared interrupt line by calling back into a
// serial.Upper to move bytes.
//
// Task context and the UART's own interrupt are the only concurrency. Every
// change to the enable shadow, and every read-modify-write of CTRL, happens
// inside a critical section from the Masker; nothing blocks.
package lpuart

import (
	"github.com/jangala-dev/tinygo-lpuart/irq"
	"github.com/jangala-dev/tinygo-lpuart/serial"
)

// DefaultBaud is used when Config.Baud is zero.
const DefaultBaud = 115200

// BreakMode selects what a break request does on the line.
type BreakMode uint8

const (
	// BreakPulse sends a single break character on CmdBreakSet.
	BreakPulse BreakMode = iota
	// BreakHold holds the line in break until CmdBreakClear, with TX
	// interrupts disarmed so no queued byte is clocked out mid-break.
	BreakHold
)

// FlowControl describes hardware flow-control wiring. Pins are board GPIO
// configurations; zero means the signal is not routed.
type FlowControl struct {
	RTSPin uint32
	CTSPin uint32
	Input  bool // RTS: throttle the remote sender
	Output bool // CTS: obey the remote receiver
}

// Config is the static description of one LPUART instance.
type Config struct {
	Baud    uint32
	Clock   uint32 // module clock in Hz
	IRQ     irq.IRQ
	Parity  serial.Parity
	Bits    uint8 // 8 or 9; anything else is treated as 8
	TwoStop bool

	// Flow is nil when the port has no flow-control capability.
	Flow *FlowControl

	Break BreakMode

	// LongBreak sends 13-bit break characters instead of 10/11-bit ones.
	LongBreak bool
}

// UART is one LPUART peripheral.
type UART struct {
	regs Registers
	mask Masker
	irqs IRQController

	upper serial.Upper

	baud  uint32
	clock uint32
	ie    uint32 // interrupt-enable shadow, subset of ctrlAllInts
	irq   irq.IRQ

	parity serial.Parity
	bits   uint8
	stop2  bool

	flow      *FlowControl
	iflow     bool
	oflow     bool
	throttled bool // RX disarmed by RxFlowControl

	breakMode BreakMode
	longBreak bool
	breakHeld bool // BreakHold break in progress; TX stays disarmed
	isConsole bool

	stats Stats
}

var (
	_ serial.Lower          = (*UART)(nil)
	_ serial.FlowController = (*UART)(nil)
	_ serial.ErrorDecoder   = (*UART)(nil)
)

// New returns an instance for the register block regs. The hardware is not
// touched until Setup.
func New(cfg Config, regs Registers, mask Masker, irqs IRQController) *UART {
	u := &UART{
		regs:      regs,
		mask:      mask,
		irqs:      irqs,
		baud:      cfg.Baud,
		clock:     cfg.Clock,
		irq:       cfg.IRQ,
		parity:    cfg.Parity,
		bits:      cfg.Bits,
		stop2:     cfg.TwoStop,
		breakMode: cfg.Break,
		longBreak: cfg.LongBreak,
	}
	if u.baud == 0 {
		u.baud = DefaultBaud
	}
	if u.bits != 9 {
		u.bits = 8
	}
	if u.parity > serial.ParityEven {
		u.parity = serial.ParityNone
	}
	if cfg.Flow != nil {
		f := *cfg.Flow
		u.flow = &f
		u.iflow = f.Input && f.RTSPin != 0
		u.oflow = f.Output && f.CTSPin != 0
	}
	return u
}

// Bind sets the upper half the interrupt handler calls into.
func (u *UART) Bind(up serial.Upper) { u.upper = up }

// IRQ returns the interrupt line of this instance.
func (u *UART) IRQ() irq.IRQ { return u.irq }

// ---------------- interrupt-enable shadow ----------------

// setInts makes the CTRL enable bits equal the shadow.
func (u *UART) setInts() {
	defer u.leave(u.enter())
	ctrl := u.regs.Load(offCTRL)
	ctrl &^= ctrlAllInts
	ctrl |= u.ie
	u.regs.Store(offCTRL, ctrl)
}

// restoreInts replaces the shadow with ie and applies it.
func (u *UART) restoreInts(ie uint32) {
	defer u.leave(u.enter())
	u.ie = ie & ctrlAllInts
	u.setInts()
}

// disableInts disables every UART interrupt and returns the previous shadow
// for a later restoreInts.
func (u *UART) disableInts() uint32 {
	defer u.leave(u.enter())
	ie := u.ie
	u.restoreInts(0)
	return ie
}

// InterruptMask returns the current interrupt-enable shadow.
func (u *UART) InterruptMask() uint32 {
	defer u.leave(u.enter())
	return u.ie
}
