package lpuart

// Registers is raw 32-bit access to one LPUART register block. off is a
// byte offset from the block base.
type Registers interface {
	Load(off uintptr) uint32
	Store(off uintptr, v uint32)
}

// Register offsets.
const (
	offBAUD  uintptr = 0x00
	offSTAT  uintptr = 0x04
	offCTRL  uintptr = 0x08
	offDATA  uintptr = 0x0C
	offMATCH uintptr = 0x10
	offMODIR uintptr = 0x14
)

// BAUD
const (
	baudSBRMask   uint32 = 0x1FFF
	baudSBNS      uint32 = 1 << 13
	baudBOTHEDGE  uint32 = 1 << 17
	baudOSRShift         = 24
	baudOSRMask   uint32 = 0x1F << baudOSRShift
	baudM10       uint32 = 1 << 29
	baudSBRMax           = 8191
	baudOSRMin           = 4
	baudOSRMax           = 32
	baudOSRNoEdge        = 8 // below this OSR both edges must be sampled
)

// STAT
const (
	statMA2F    uint32 = 1 << 14
	statMA1F    uint32 = 1 << 15
	statPF      uint32 = 1 << 16
	statFE      uint32 = 1 << 17
	statNF      uint32 = 1 << 18
	statOR      uint32 = 1 << 19
	statIDLE    uint32 = 1 << 20
	statRDRF    uint32 = 1 << 21
	statTC      uint32 = 1 << 22
	statTDRE    uint32 = 1 << 23
	statRAF     uint32 = 1 << 24
	statLBKDE   uint32 = 1 << 25
	statBRK13   uint32 = 1 << 26
	statRWUID   uint32 = 1 << 27
	statRXINV   uint32 = 1 << 28
	statMSBF    uint32 = 1 << 29
	statRXEDGIF uint32 = 1 << 30
	statLBKDIF  uint32 = 1 << 31

	statErrors = statOR | statFE | statNF | statPF

	// Write-one-to-clear flags. Read-modify-write of STAT must mask these
	// out or it clears whatever happens to be pending.
	statW1C = statLBKDIF | statRXEDGIF | statIDLE | statOR | statNF |
		statFE | statPF | statMA1F | statMA2F
)

// CTRL
const (
	ctrlPT    uint32 = 1 << 0
	ctrlPE    uint32 = 1 << 1
	ctrlM     uint32 = 1 << 4
	ctrlRSRC  uint32 = 1 << 5
	ctrlLOOPS uint32 = 1 << 7
	ctrlMA2IE uint32 = 1 << 14
	ctrlMA1IE uint32 = 1 << 15
	ctrlSBK   uint32 = 1 << 16
	ctrlRE    uint32 = 1 << 18
	ctrlTE    uint32 = 1 << 19
	ctrlILIE  uint32 = 1 << 20
	ctrlRIE   uint32 = 1 << 21
	ctrlTCIE  uint32 = 1 << 22
	ctrlTIE   uint32 = 1 << 23
	ctrlPEIE  uint32 = 1 << 24
	ctrlFEIE  uint32 = 1 << 25
	ctrlNEIE  uint32 = 1 << 26
	ctrlORIE  uint32 = 1 << 27

	ctrlErrorInts = ctrlORIE | ctrlFEIE | ctrlNEIE | ctrlPEIE
	ctrlRxInts    = ctrlRIE
	ctrlTxInts    = ctrlTIE
	ctrlTRInts    = ctrlTxInts | ctrlRxInts

	// Every interrupt-enable bit the shadow may hold.
	ctrlAllInts = ctrlTxInts | ctrlRxInts | ctrlErrorInts |
		ctrlMA1IE | ctrlMA2IE | ctrlILIE | ctrlTCIE
)

// MODIR
const (
	modirTXCTSE uint32 = 1 << 0
	modirRXRTSE uint32 = 1 << 3
)

// ctrlToStat maps CTRL enables onto the STAT bits they arm. The error
// enables sit 8 bits above their flags; RIE and TIE share positions with
// RDRF and TDRE.
func ctrlToStat(ctrl uint32) uint32 {
	return (ctrl&ctrlErrorInts)>>8 | ctrl&ctrlTRInts
}
