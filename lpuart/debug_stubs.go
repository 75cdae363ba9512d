//go:build !lpuartdebug

package lpuart

type Stats struct{}

func (u *UART) DebugReset()       {}
func (u *UART) DebugStats() Stats { return Stats{} }

func (u *UART) dbgISR()              {}
func (u *UART) dbgLoop()             {}
func (u *UART) dbgLineErrors(uint32) {}
func (u *UART) dbgDiscard()          {}
func (u *UART) dbgReceive()          {}
func (u *UART) dbgSend()             {}
