package serial

// Cmd is a control request code understood by Lower.Ioctl.
type Cmd int

const (
	CmdGetLine    Cmd = iota + 1 // arg *LineSettings
	CmdSetLine                   // arg *LineSettings
	CmdSingleWire                // arg bool
	CmdBreakSet                  // arg ignored
	CmdBreakClear                // arg ignored
	CmdSnapshot                  // arg is a driver-specific snapshot pointer
)

func (c Cmd) String() string {
	switch c {
	case CmdGetLine:
		return "get-line"
	case CmdSetLine:
		return "set-line"
	case CmdSingleWire:
		return "single-wire"
	case CmdBreakSet:
		return "break-set"
	case CmdBreakClear:
		return "break-clear"
	case CmdSnapshot:
		return "snapshot"
	}
	return "unknown"
}

// Parity is the line parity mode.
type Parity uint8

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return "none"
	}
}

// LineSettings is the portable view of a port's framing and flow control.
type LineSettings struct {
	Baud     uint32
	Parity   Parity
	DataBits uint8 // drivers that cannot express their frame here report 8
	StopBits uint8 // 1 or 2
	CTSFlow  bool  // output flow control
	RTSFlow  bool  // input flow control
}
