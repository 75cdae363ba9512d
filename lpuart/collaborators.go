package lpuart

import "github.com/jangala-dev/tinygo-lpuart/irq"

// Masker is the CPU-level interrupt mask. Disable returns the previous state
// and Restore reinstates it, so sections nest.
type Masker interface {
	Disable() uintptr
	Restore(state uintptr)
}

// IRQController attaches handlers and masks lines at the interrupt
// controller. *irq.Table implements it.
type IRQController interface {
	Attach(n irq.IRQ, h irq.Handler) error
	Detach(n irq.IRQ)
	Enable(n irq.IRQ)
	Disable(n irq.IRQ)
}

var _ IRQController = (*irq.Table)(nil)

// enter opens a critical section; pair with leave, typically
// defer u.leave(u.enter()).
func (u *UART) enter() uintptr { return u.mask.Disable() }

func (u *UART) leave(state uintptr) { u.mask.Restore(state) }
