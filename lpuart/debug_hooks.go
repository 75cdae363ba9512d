//go:build lpuartdebug

package lpuart

import "sync/atomic"

// Stats holds counters since the last reset.
type Stats struct {
	// ISR-level
	ISREntries uint32 // handler entries
	ISRLoops   uint32 // extra passes after the first within one entry

	// Line errors seen by the handler
	ErrOverrun uint32
	ErrFraming uint32
	ErrNoise   uint32
	ErrParity  uint32
	Discards   uint32 // DATA reads made only to clear an error

	// Byte path
	Receives uint32
	Sends    uint32
}

func (u *UART) DebugReset() {
	u.stats = Stats{}
}

func (u *UART) DebugStats() Stats {
	return Stats{
		ISREntries: atomic.LoadUint32(&u.stats.ISREntries),
		ISRLoops:   atomic.LoadUint32(&u.stats.ISRLoops),
		ErrOverrun: atomic.LoadUint32(&u.stats.ErrOverrun),
		ErrFraming: atomic.LoadUint32(&u.stats.ErrFraming),
		ErrNoise:   atomic.LoadUint32(&u.stats.ErrNoise),
		ErrParity:  atomic.LoadUint32(&u.stats.ErrParity),
		Discards:   atomic.LoadUint32(&u.stats.Discards),
		Receives:   atomic.LoadUint32(&u.stats.Receives),
		Sends:      atomic.LoadUint32(&u.stats.Sends),
	}
}

func (u *UART) dbgISR()  { atomic.AddUint32(&u.stats.ISREntries, 1) }
func (u *UART) dbgLoop() { atomic.AddUint32(&u.stats.ISRLoops, 1) }

func (u *UART) dbgLineErrors(stat uint32) {
	if stat&statOR != 0 {
		atomic.AddUint32(&u.stats.ErrOverrun, 1)
	}
	if stat&statFE != 0 {
		atomic.AddUint32(&u.stats.ErrFraming, 1)
	}
	if stat&statNF != 0 {
		atomic.AddUint32(&u.stats.ErrNoise, 1)
	}
	if stat&statPF != 0 {
		atomic.AddUint32(&u.stats.ErrParity, 1)
	}
}

func (u *UART) dbgDiscard() { atomic.AddUint32(&u.stats.Discards, 1) }
func (u *UART) dbgReceive() { atomic.AddUint32(&u.stats.Receives, 1) }
func (u *UART) dbgSend()    { atomic.AddUint32(&u.stats.Sends, 1) }
