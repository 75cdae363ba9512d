package lpuart

import (
	"github.com/jangala-dev/tinygo-lpuart/errcode"
	"github.com/jangala-dev/tinygo-lpuart/irq"
	"github.com/jangala-dev/tinygo-lpuart/serial"
)

// Regs is a snapshot of the readable registers. DATA is left out: reading
// it consumes a received byte.
type Regs struct {
	BAUD  uint32
	STAT  uint32
	CTRL  uint32
	MATCH uint32
	MODIR uint32
}

// Snapshot is the raw instance state, for debugging.
type Snapshot struct {
	Baud       uint32
	Clock      uint32
	IE         uint32
	IRQ        irq.IRQ
	Parity     serial.Parity
	Bits       uint8
	TwoStop    bool
	InputFlow  bool
	OutputFlow bool
	RTSPin     uint32
	CTSPin     uint32
	Break      BreakMode
	LongBreak  bool
	BreakHeld  bool
	Console    bool
	Regs       Regs
}

// Ioctl handles the serial control requests. Unknown commands return
// errcode.Unsupported; a nil argument where one is needed returns
// errcode.InvalidParams.
func (u *UART) Ioctl(cmd serial.Cmd, arg any) error {
	switch cmd {
	case serial.CmdGetLine:
		ls, ok := arg.(*serial.LineSettings)
		if !ok || ls == nil {
			return errcode.New(errcode.InvalidParams, "lpuart.Ioctl", "want *serial.LineSettings")
		}
		*ls = u.LineSettings()
	case serial.CmdSetLine:
		ls, ok := arg.(*serial.LineSettings)
		if !ok || ls == nil {
			return errcode.New(errcode.InvalidParams, "lpuart.Ioctl", "want *serial.LineSettings")
		}
		return u.SetLineSettings(*ls)
	case serial.CmdSingleWire:
		on, ok := arg.(bool)
		if !ok {
			return errcode.New(errcode.InvalidParams, "lpuart.Ioctl", "want bool")
		}
		u.SetSingleWire(on)
	case serial.CmdBreakSet:
		u.SetBreak()
	case serial.CmdBreakClear:
		u.ClearBreak()
	case serial.CmdSnapshot:
		s, ok := arg.(*Snapshot)
		if !ok || s == nil {
			return errcode.New(errcode.InvalidParams, "lpuart.Ioctl", "want *lpuart.Snapshot")
		}
		*s = u.Snapshot()
	default:
		return errcode.New(errcode.Unsupported, "lpuart.Ioctl", "unknown command")
	}
	return nil
}

// LineSettings reports the current line. DataBits is always 8: a 9-bit
// frame has no representation in serial.LineSettings.
func (u *UART) LineSettings() serial.LineSettings {
	ls := serial.LineSettings{
		Baud:     u.baud,
		Parity:   u.parity,
		DataBits: 8,
		StopBits: 1,
		CTSFlow:  u.oflow,
		RTSFlow:  u.iflow,
	}
	if u.stop2 {
		ls.StopBits = 2
	}
	return ls
}

// SetLineSettings validates ls in full and only then applies it; a rejected
// request changes nothing. The internal word length is kept as configured.
func (u *UART) SetLineSettings(ls serial.LineSettings) error {
	const op = "lpuart.SetLineSettings"
	switch {
	case ls.DataBits != 8:
		return errcode.New(errcode.InvalidParams, op, "data bits must be 8")
	case ls.Baud == 0:
		return errcode.New(errcode.InvalidParams, op, "baud must be non-zero")
	case ls.Baud > u.clock/baudOSRMin:
		return errcode.New(errcode.InvalidParams, op, "baud out of reach of the module clock")
	case ls.Parity > serial.ParityEven:
		return errcode.New(errcode.InvalidParams, op, "unknown parity")
	case ls.StopBits != 1 && ls.StopBits != 2:
		return errcode.New(errcode.InvalidParams, op, "stop bits must be 1 or 2")
	case ls.CTSFlow && (u.flow == nil || u.flow.CTSPin == 0):
		return errcode.New(errcode.InvalidParams, op, "CTS not routed")
	case ls.RTSFlow && (u.flow == nil || u.flow.RTSPin == 0):
		return errcode.New(errcode.InvalidParams, op, "RTS not routed")
	}

	defer u.leave(u.enter())
	u.parity = ls.Parity
	u.stop2 = ls.StopBits == 2
	u.oflow = ls.CTSFlow
	u.iflow = ls.RTSFlow
	u.baud = ls.Baud

	// Takes effect immediately; no drain first.
	u.configure()
	return nil
}

// SetSingleWire switches half-duplex operation on or off. In single-wire
// mode RXD is disconnected and TXD carries both directions.
func (u *UART) SetSingleWire(on bool) {
	defer u.leave(u.enter())
	ctrl := u.regs.Load(offCTRL)
	if on {
		ctrl |= ctrlLOOPS | ctrlRSRC
	} else {
		ctrl &^= ctrlLOOPS | ctrlRSRC
	}
	u.regs.Store(offCTRL, ctrl&^ctrlAllInts|u.ie)
}

// SetBreak starts a break, 13 bits long when LongBreak is configured. In
// BreakPulse mode SBK is toggled so one break character goes out. In
// BreakHold mode SBK stays set and TX interrupts stay disarmed until
// ClearBreak.
func (u *UART) SetBreak() {
	defer u.leave(u.enter())

	stat := u.regs.Load(offSTAT) &^ (statW1C | statBRK13)
	if u.longBreak {
		stat |= statBRK13
	}
	u.regs.Store(offSTAT, stat)

	ctrl := u.regs.Load(offCTRL)
	u.regs.Store(offCTRL, ctrl|ctrlSBK)

	if u.breakMode == BreakHold {
		u.TxInt(false)
		u.breakHeld = true
		return
	}
	ctrl = u.regs.Load(offCTRL)
	u.regs.Store(offCTRL, ctrl&^ctrlSBK)
}

// ClearBreak returns TX to normal operation. In BreakHold mode it also
// re-arms TX interrupts, which runs one XmitChars pass.
func (u *UART) ClearBreak() {
	defer u.leave(u.enter())
	ctrl := u.regs.Load(offCTRL)
	u.regs.Store(offCTRL, ctrl&^ctrlSBK)
	if u.breakMode == BreakHold {
		u.breakHeld = false
		u.TxInt(true)
	}
}

// Snapshot copies the instance state and the readable registers.
func (u *UART) Snapshot() Snapshot {
	defer u.leave(u.enter())
	s := Snapshot{
		Baud:       u.baud,
		Clock:      u.clock,
		IE:         u.ie,
		IRQ:        u.irq,
		Parity:     u.parity,
		Bits:       u.bits,
		TwoStop:    u.stop2,
		InputFlow:  u.iflow,
		OutputFlow: u.oflow,
		Break:      u.breakMode,
		LongBreak:  u.longBreak,
		BreakHeld:  u.breakHeld,
		Console:    u.isConsole,
		Regs: Regs{
			BAUD:  u.regs.Load(offBAUD),
			STAT:  u.regs.Load(offSTAT),
			CTRL:  u.regs.Load(offCTRL),
			MATCH: u.regs.Load(offMATCH),
			MODIR: u.regs.Load(offMODIR),
		},
	}
	if u.flow != nil {
		s.RTSPin = u.flow.RTSPin
		s.CTSPin = u.flow.CTSPin
	}
	return s
}
