//go:build tinygo

package lpuart

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

// MMIO is a register block at a fixed physical address.
type MMIO uintptr

func (m MMIO) Load(off uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(uintptr(m) + off)))
}

func (m MMIO) Store(off uintptr, v uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(uintptr(m)+off)), v)
}

// CPU masks interrupts globally through runtime/interrupt.
type CPU struct{}

func (CPU) Disable() uintptr      { return uintptr(interrupt.Disable()) }
func (CPU) Restore(state uintptr) { interrupt.Restore(interrupt.State(state)) }
