package lpuart

import "github.com/jangala-dev/tinygo-lpuart/serial"

// Receive reads one byte. STAT is captured before DATA is read and returned
// as is; any error flags in it are cleared after the read.
func (u *UART) Receive() (byte, uint32) {
	stat := u.regs.Load(offSTAT)
	data := u.regs.Load(offDATA)
	if errs := stat & statErrors; errs != 0 {
		u.regs.Store(offSTAT, errs)
	}
	u.dbgReceive()
	return byte(data), stat
}

// RxAvailable reports RDRF.
func (u *UART) RxAvailable() bool {
	return u.regs.Load(offSTAT)&statRDRF != 0
}

// Send writes b to DATA. The caller has checked TxReady.
func (u *UART) Send(b byte) {
	u.regs.Store(offDATA, uint32(b))
	u.dbgSend()
}

// TxReady reports TDRE.
func (u *UART) TxReady() bool {
	return u.regs.Load(offSTAT)&statTDRE != 0
}

// TxEmpty reports TDRE; this block does not distinguish "room for one more"
// from "fully drained".
func (u *UART) TxEmpty() bool { return u.TxReady() }

// RxInt arms or disarms receive interest. Error interrupts travel with it.
func (u *UART) RxInt(enable bool) {
	defer u.leave(u.enter())
	u.throttled = false
	if enable {
		u.ie |= ctrlRxInts | ctrlErrorInts
	} else {
		u.ie &^= ctrlRxInts | ctrlErrorInts
	}
	u.setInts()
}

// TxInt arms or disarms transmit interest. Arming also runs one XmitChars
// pass in place of a TDRE edge that may already have gone by; that pass may
// call back into TxInt(false). While a held break is in progress arming is
// ignored; ClearBreak arms TX again.
func (u *UART) TxInt(enable bool) {
	defer u.leave(u.enter())
	if enable {
		if u.breakHeld {
			return
		}
		u.ie |= ctrlTxInts
		u.setInts()
		if u.upper != nil {
			u.upper.XmitChars()
		}
		return
	}
	u.ie &^= ctrlTxInts
	u.setInts()
}

// RxFlowControl throttles reception when input flow control is enabled.
// With upper set the RX ring is at its upper watermark: receive interrupts
// are disabled, which with RTS wired stops the sender, and true is
// returned. Otherwise receive interrupts are re-armed and false returned.
//
// A throttled port is released even if input flow control was switched off
// in the meantime.
func (u *UART) RxFlowControl(nbuffered int, upper bool) bool {
	defer u.leave(u.enter())
	if upper {
		if !u.iflow {
			return false
		}
		u.restoreInts(u.ie &^ ctrlRxInts)
		u.throttled = true
		return true
	}
	if u.iflow || u.throttled {
		u.RxInt(true)
	}
	return false
}

// LineErrors decodes the error flags in a status word from Receive.
func (u *UART) LineErrors(stat uint32) serial.LineErrors {
	var e serial.LineErrors
	if stat&statOR != 0 {
		e |= serial.ErrOverrun
	}
	if stat&statFE != 0 {
		e |= serial.ErrFraming
	}
	if stat&statNF != 0 {
		e |= serial.ErrNoise
	}
	if stat&statPF != 0 {
		e |= serial.ErrParity
	}
	return e
}
