package lpuart

// qualifiedStatus returns the STAT bits whose interrupt is currently armed.
// Asserted but unarmed conditions are not acted on.
func (u *UART) qualifiedStatus() uint32 {
	stat := u.regs.Load(offSTAT)
	ctrl := u.regs.Load(offCTRL)
	return stat & ctrlToStat(ctrl)
}

// handleInterrupt services the shared LPUART line. It loops until no armed
// condition remains so one entry handles everything pending.
//
// Errors pre-empt data movement: the offending byte is discarded (except for
// a pure overrun, which needs no DATA read and would otherwise cost a good
// byte), the flags are cleared and the handler returns. Anything still
// pending raises a fresh interrupt.
func (u *UART) handleInterrupt() {
	stat := u.qualifiedStatus()
	u.dbgISR()

	for stat != 0 {
		if errs := stat & statErrors; errs != 0 {
			u.dbgLineErrors(errs)
			if errs != statOR {
				_ = u.regs.Load(offDATA)
				u.dbgDiscard()
			}
			u.regs.Store(offSTAT, errs)
			return
		}

		if u.upper == nil {
			return
		}

		// RDRF clears when DATA is read.
		if stat&statRDRF != 0 {
			u.upper.RecvChars()
		}

		// TDRE clears when DATA is written.
		if stat&statTDRE != 0 {
			u.upper.XmitChars()
		}

		u.dbgLoop()
		stat = u.qualifiedStatus()
	}
}
