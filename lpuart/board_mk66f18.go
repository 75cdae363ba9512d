// lpuart/board_mk66f18.go

//go:build mk66f18

package lpuart

import (
	"device/nxp"
	"runtime/interrupt"

	"github.com/jangala-dev/tinygo-lpuart/irq"
)

// LPUART0 on the K66. Pin mux and the SIM_SOPT2.LPUARTSRC clock selection
// are board bring-up and must be done before Setup; lpuart0Clock assumes the
// 48 MHz IRC48M source.
const (
	lpuart0Base  = 0x400C4000
	lpuart0Clock = 48000000

	IRQLPUART0 = irq.IRQ(nxp.IRQ_LPUART0)
)

// Vectors is the dispatch table for interrupt lines owned by this package.
var Vectors irq.Table

// LPUART0 is the K66's only LPUART.
var LPUART0 = New(Config{
	Baud:  DefaultBaud,
	Clock: lpuart0Clock,
	IRQ:   IRQLPUART0,
}, MMIO(lpuart0Base), CPU{}, &Vectors)

func init() {
	line := interrupt.New(nxp.IRQ_LPUART0, lpuart0Vector)
	line.SetPriority(0x80)
	Vectors.Bind(IRQLPUART0, line)
}

func lpuart0Vector(interrupt.Interrupt) { Vectors.Dispatch(IRQLPUART0) }
