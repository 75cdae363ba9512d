package lpuart

import "github.com/jangala-dev/tinygo-lpuart/errcode"

// Setup programs the line and leaves every interrupt disabled; the upper
// half arms RX and TX interest separately.
func (u *UART) Setup() error {
	u.configure()
	u.restoreInts(0)
	return nil
}

// Shutdown disables interrupts and resets the transmitter and receiver.
// It is safe on an instance that was never set up.
func (u *UART) Shutdown() {
	u.restoreInts(0)
	u.reset()
}

// Attach installs the interrupt handler and unmasks the line at the
// controller. The enable shadow is left as is. On failure the line stays
// masked and the registration error is returned.
func (u *UART) Attach() error {
	if err := u.irqs.Attach(u.irq, u.handleInterrupt); err != nil {
		return errcode.Wrap("lpuart.Attach", err)
	}
	u.irqs.Enable(u.irq)
	return nil
}

// Detach disables every UART interrupt source first, then masks the line,
// then removes the handler, so a pending interrupt cannot reach a detached
// handler.
func (u *UART) Detach() {
	u.restoreInts(0)
	u.irqs.Disable(u.irq)
	u.irqs.Detach(u.irq)
}

// EarlyInit disables interrupts on every listed instance and sets up the
// console so that Putc works before the serial layer opens any port.
func EarlyInit(console *UART, all ...*UART) {
	for _, u := range all {
		if u != nil {
			u.restoreInts(0)
		}
	}
	if console != nil {
		console.isConsole = true
		_ = console.Setup()
	}
}
