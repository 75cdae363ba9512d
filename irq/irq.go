// Package irq is a small interrupt vector table: a handler per line, a
// per-line enable, and a pending latch for lines that fire while disabled.
//
// On hardware the NVIC owns enable and pending state; Table mirrors it and
// forwards enable/disable to the bound Line. The real vector calls Dispatch.
// On the host, tests call Dispatch directly to simulate an interrupt.
package irq

import "github.com/jangala-dev/tinygo-lpuart/errcode"

// MaxIRQ bounds the table size.
const MaxIRQ = 128

// IRQ is an interrupt line number.
type IRQ uint8

// Handler is an attached interrupt service routine.
type Handler func()

// Line is the controller-side handle for one interrupt line.
// runtime/interrupt.Interrupt satisfies it on TinyGo.
type Line interface {
	Enable()
	Disable()
}

type vector struct {
	handler Handler
	line    Line
	enabled bool
	pending bool
	count   uint32
}

// Table is the vector table. The zero value is ready to use.
type Table struct {
	vec [MaxIRQ]vector
}

// Bind associates a controller line with n. Enable/Disable are forwarded to it.
func (t *Table) Bind(n IRQ, l Line) {
	if int(n) >= MaxIRQ {
		return
	}
	t.vec[n].line = l
}

// Attach installs h as the handler for n. The line stays disabled.
func (t *Table) Attach(n IRQ, h Handler) error {
	switch {
	case int(n) >= MaxIRQ:
		return errcode.New(errcode.OutOfRange, "irq.Attach", "line out of range")
	case h == nil:
		return errcode.New(errcode.InvalidParams, "irq.Attach", "nil handler")
	case t.vec[n].handler != nil:
		return errcode.New(errcode.Busy, "irq.Attach", "line already attached")
	}
	t.vec[n].handler = h
	return nil
}

// Detach removes the handler for n and drops any pending latch.
func (t *Table) Detach(n IRQ) {
	if int(n) >= MaxIRQ {
		return
	}
	v := &t.vec[n]
	v.handler = nil
	v.pending = false
}

// Enable unmasks n. A latched interrupt is delivered once if a handler is attached.
func (t *Table) Enable(n IRQ) {
	if int(n) >= MaxIRQ {
		return
	}
	v := &t.vec[n]
	v.enabled = true
	if v.line != nil {
		v.line.Enable()
	}
	if v.pending && v.handler != nil {
		v.pending = false
		v.count++
		v.handler()
	}
}

// Disable masks n at the controller.
func (t *Table) Disable(n IRQ) {
	if int(n) >= MaxIRQ {
		return
	}
	v := &t.vec[n]
	v.enabled = false
	if v.line != nil {
		v.line.Disable()
	}
}

// Dispatch runs the handler for n if it is attached and enabled, and
// reports whether it ran. Otherwise the interrupt is latched as pending.
func (t *Table) Dispatch(n IRQ) bool {
	if int(n) >= MaxIRQ {
		return false
	}
	v := &t.vec[n]
	if !v.enabled || v.handler == nil {
		v.pending = true
		return false
	}
	v.count++
	v.handler()
	return true
}

// Pending reports whether n has a latched, undelivered interrupt.
func (t *Table) Pending(n IRQ) bool { return int(n) < MaxIRQ && t.vec[n].pending }

// Attached reports whether n has a handler.
func (t *Table) Attached(n IRQ) bool { return int(n) < MaxIRQ && t.vec[n].handler != nil }

// Enabled reports whether n is unmasked.
func (t *Table) Enabled(n IRQ) bool { return int(n) < MaxIRQ && t.vec[n].enabled }

// Count returns how many times the handler for n has run.
func (t *Table) Count(n IRQ) uint32 {
	if int(n) >= MaxIRQ {
		return 0
	}
	return t.vec[n].count
}
