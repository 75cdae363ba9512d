package lpuart

import "io"

// Putc writes c with the interrupt-driven path quiesced: every UART
// interrupt is disabled, c is written by polling TDRE, and the previous
// enable mask is restored. A '\n' is preceded by '\r'.
func (u *UART) Putc(c byte) {
	prev := u.disableInts()
	defer u.restoreInts(prev)

	if c == '\n' {
		u.lowPutc('\r')
	}
	u.lowPutc(c)
}

// lowPutc busy-waits for TDRE and writes c.
func (u *UART) lowPutc(c byte) {
	for u.regs.Load(offSTAT)&statTDRE == 0 {
	}
	u.regs.Store(offDATA, uint32(c))
}

// WriteString writes s through Putc.
func (u *UART) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		u.Putc(s[i])
	}
	return len(s), nil
}

// Console returns an io.Writer over Putc, for panic and log output that must
// not wait on the serial rings.
func (u *UART) Console() io.Writer { return consoleWriter{u} }

type consoleWriter struct{ u *UART }

func (w consoleWriter) Write(p []byte) (int, error) {
	for _, c := range p {
		w.u.Putc(c)
	}
	return len(p), nil
}
