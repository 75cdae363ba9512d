package lpuart

import (
	"github.com/jangala-dev/tinygo-lpuart/internal/mathx"
	"github.com/jangala-dev/tinygo-lpuart/serial"
)

// divisor picks the oversampling ratio and baud modulo with the smallest
// error for baud at clock. Ties go to the larger OSR.
func divisor(clock, baud uint32) (osr, sbr uint32) {
	if baud == 0 {
		baud = DefaultBaud
	}
	c, b := uint64(clock), uint64(baud)
	osr, sbr = baudOSRMin, 1
	best := ^uint64(0)
	for o := uint64(baudOSRMin); o <= baudOSRMax; o++ {
		s := mathx.Clamp((c+b*o/2)/(b*o), 1, baudSBRMax)
		diff := mathx.Diff(c/(o*s), b)
		if diff <= best {
			best, osr, sbr = diff, uint32(o), uint32(s)
		}
	}
	return osr, sbr
}

// configure programs baud, framing and flow control. RE/TE are dropped while
// BAUD is written. The interrupt-enable bits of CTRL are rewritten from the
// shadow so reconfiguring never changes which interrupts are armed.
func (u *UART) configure() {
	defer u.leave(u.enter())

	ctrl := u.regs.Load(offCTRL)
	u.regs.Store(offCTRL, ctrl&^(ctrlRE|ctrlTE))

	osr, sbr := divisor(u.clock, u.baud)
	baud := (osr-1)<<baudOSRShift | sbr&baudSBRMask
	if osr < baudOSRNoEdge {
		baud |= baudBOTHEDGE
	}
	if u.stop2 {
		baud |= baudSBNS
	}

	ctrl &^= ctrlAllInts | ctrlPE | ctrlPT | ctrlM | ctrlSBK | ctrlRE | ctrlTE
	if u.breakHeld {
		ctrl |= ctrlSBK
	}
	frame := u.bits
	switch u.parity {
	case serial.ParityOdd:
		ctrl |= ctrlPE | ctrlPT
		frame++
	case serial.ParityEven:
		ctrl |= ctrlPE
		frame++
	}
	switch frame {
	case 9:
		ctrl |= ctrlM
	case 10:
		baud |= baudM10
	}
	u.regs.Store(offBAUD, baud)

	modir := u.regs.Load(offMODIR) &^ (modirTXCTSE | modirRXRTSE)
	if u.oflow {
		modir |= modirTXCTSE
	}
	if u.iflow {
		modir |= modirRXRTSE
	}
	u.regs.Store(offMODIR, modir)

	u.regs.Store(offCTRL, ctrl|u.ie|ctrlRE|ctrlTE)
}

// reset disables the receiver and transmitter and drops any held break.
func (u *UART) reset() {
	defer u.leave(u.enter())
	u.breakHeld = false
	ctrl := u.regs.Load(offCTRL)
	u.regs.Store(offCTRL, ctrl&^(ctrlRE|ctrlTE|ctrlSBK))
}
