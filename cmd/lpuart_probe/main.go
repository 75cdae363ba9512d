//go:build mk66f18 && lpuartdebug

package main

import (
	"time"

	"github.com/jangala-dev/tinygo-lpuart/lpuart"
	"github.com/jangala-dev/tinygo-lpuart/serial"
)

func printStats(u *lpuart.UART, p *serial.Port, label string) {
	d := u.DebugStats()
	s := u.Snapshot()
	ps := p.Stats()
	println("==", label)
	println("ISR:    entries=", d.ISREntries, " loops=", d.ISRLoops)
	println("Errors: OR=", d.ErrOverrun, " FE=", d.ErrFraming, " NF=", d.ErrNoise, " PF=", d.ErrParity,
		" discards=", d.Discards)
	println("Bytes:  recv=", d.Receives, " send=", d.Sends, " ring rx=", ps.RxBytes, " dropped=", ps.Dropped)
	println("Flow:   throttles=", ps.Throttles, " throttled=", p.Throttled())
	println("State:  baud=", s.Baud, " ie=0x", s.IE, " parity=", s.Parity.String(), " bits=", s.Bits)
	println("Regs:   BAUD=0x", s.Regs.BAUD, " STAT=0x", s.Regs.STAT, " CTRL=0x", s.Regs.CTRL,
		" MODIR=0x", s.Regs.MODIR)
}

func main() {
	delay := 10
	for i := 0; i < delay; i++ {
		println("probe starting in ", delay-i, " seconds")
		time.Sleep(time.Second)
	}
	println("lpuart probe (diagnostic)")

	u := lpuart.LPUART0
	p := serial.NewPort(u, serial.PortConfig{RxSize: 128})
	if err := p.Open(); err != nil {
		println("fatal:", err.Error())
		for {
			time.Sleep(time.Hour)
		}
	}
	u.DebugReset()
	printStats(u, p, "after open")

	// Loop TX back internally so the probe needs no wiring.
	_ = p.Ioctl(serial.CmdSingleWire, true)
	_, _ = p.Write([]byte("probe"))
	_ = p.Flush()
	time.Sleep(10 * time.Millisecond)
	printStats(u, p, "after single-wire write")
	_ = p.Ioctl(serial.CmdSingleWire, false)

	for {
		time.Sleep(5 * time.Second)
		var buf [64]byte
		n := p.TryRead(buf[:])
		println("drained", n, "bytes")
		printStats(u, p, "periodic")
	}
}
