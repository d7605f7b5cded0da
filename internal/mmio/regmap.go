package mmio

// Register byte offsets. Values are placeholders for the memory window the
// platform layer hands back; what matters for compatibility is the bit
// layout within each register (below), not the absolute offsets, since the
// offsets are IP-instance specific and come from the platform's memory map.
const (
	RegControl     uint32 = 0x00
	RegStatus      uint32 = 0x08
	RegErrorAck    uint32 = 0x10
	RegCapability1 uint32 = 0x18
	RegCapability2 uint32 = 0x20
	RegDebugCap1   uint32 = 0x28
	RegDebugCap2   uint32 = 0x30
	RegDebugCap3   uint32 = 0x38

	RegBlinding     uint32 = 0x40
	RegShuffle      uint32 = 0x48
	RegZRemask      uint32 = 0x50
	RegXYShuffle    uint32 = 0x58
	RegAXIMask      uint32 = 0x60
	RegToken        uint32 = 0x68
	RegTokenRequest uint32 = 0x70

	RegAttackCfg0 uint32 = 0x78
	RegAttackCfg1 uint32 = 0x80
	RegAttackCfg2 uint32 = 0x88

	RegHalt        uint32 = 0x90
	RegBreakpoint  uint32 = 0x98
	RegDebugStatus uint32 = 0xA0
	RegRunOpcodes  uint32 = 0xA8
	RegTrigger     uint32 = 0xB0
	RegTriggerUp   uint32 = 0xB8
	RegTriggerDown uint32 = 0xC0

	RegOpcodeAddr uint32 = 0xC8
	RegOpcodeLo   uint32 = 0xD0
	RegOpcodeHi   uint32 = 0xD8

	RegLargeNbAddr uint32 = 0xE0
	RegLargeNbData uint32 = 0xE8

	// RegPointNull is written to explicitly assert or clear the R0/R1
	// is-null flags (spec §3: writing affine coordinates implicitly
	// clears the target point's is-null flag; this register is how the
	// driver re-asserts it when "infinity" must be preserved).
	RegPointNull uint32 = 0x178

	RegDiagSource uint32 = 0xF0
	RegDiagMin    uint32 = 0xF8
	RegDiagMax    uint32 = 0x100
	RegDiagOK     uint32 = 0x108
	RegDiagStarv  uint32 = 0x110

	RegRawFIFORead    uint32 = 0x118
	RegRawFIFOBit     uint32 = 0x120
	RegRawFIFOReset   uint32 = 0x128
	RegRawFIFOFullAt  uint32 = 0x130
	RegRawFIFOReadEn  uint32 = 0x138
	RegTRNGPostProc   uint32 = 0x140
	RegClockMain      uint32 = 0x148
	RegClockPrecount  uint32 = 0x150
	RegSmallScalarSz  uint32 = 0x158
	RegIRQEnable      uint32 = 0x160
	RegDebugFlags     uint32 = 0x168
	RegVersion        uint32 = 0x170
)

// Control register fields (spec §6): action bits at 0..6, read-token at
// bit 12, write-nb at 16, read-nb at 17, write-scalar at 18, nb-address at
// 20..31.
var (
	CtlKP         = NewField(0, 1)
	CtlADD        = NewField(1, 1)
	CtlDBL        = NewField(2, 1)
	CtlCHK        = NewField(3, 1)
	CtlNEG        = NewField(4, 1)
	CtlEQU        = NewField(5, 1)
	CtlOPP        = NewField(6, 1)
	CtlReadToken  = NewField(12, 1)
	CtlWriteNB    = NewField(16, 1)
	CtlReadNB     = NewField(17, 1)
	CtlWriteScal  = NewField(18, 1)
	CtlNBAddress  = NewField(20, 12)
)

// Status register fields (spec §6).
var (
	StBusy        = NewField(0, 1)
	StKP          = NewField(4, 1)
	StMTY         = NewField(5, 1)
	StPOP         = NewField(6, 1)
	StROrW        = NewField(7, 1)
	StInit        = NewField(8, 1)
	StNNDynAct    = NewField(9, 1)
	StEnoughRndWK = NewField(10, 1)
	StYes         = NewField(11, 1)
	StR0IsNull    = NewField(12, 1)
	StR1IsNull    = NewField(13, 1)
	StTokenGen    = NewField(14, 1)
	StError       = NewField(16, 15)
)

// Blinding register fields.
var (
	BlindingEnable = NewField(0, 1)
	BlindingSize   = NewField(4, 28)
)

// Z-remask register fields.
var (
	ZRemaskEnable = NewField(0, 1)
	ZRemaskPeriod = NewField(16, 16)
)

// Breakpoint register fields.
var (
	BkEnable  = NewField(0, 1)
	BkID      = NewField(1, 2)
	BkAddr    = NewField(4, 12)
	BkBitPos  = NewField(16, 12)
	BkState   = NewField(28, 4)
)

// Debug status register fields.
var (
	DbgHalted = NewField(0, 1)
	DbgBkID   = NewField(1, 2)
	DbgBkHit  = NewField(3, 1)
	DbgPC     = NewField(4, 12)
	DbgState  = NewField(28, 4)
)

// Point-null register fields.
var (
	PointNullR0 = NewField(0, 1)
	PointNullR1 = NewField(1, 1)
)

// Capability register 1 fields.
var (
	CapDebugVsProd = NewField(0, 1)
	CapShuffle     = NewField(4, 1)
	CapDynamicNN   = NewField(8, 1)
	CapWire64      = NewField(9, 1)
	CapNNMax       = NewField(12, 20)
)
