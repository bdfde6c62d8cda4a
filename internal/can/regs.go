package can

// Register map addresses, as standardized for the MCP2515 (datasheet §3).
// The driver treats these as opaque constants; it never derives them.
const (
	regRXF0SIDH = 0x00
	regRXF1SIDH = 0x04
	regRXF2SIDH = 0x08
	regRXF3SIDH = 0x10
	regRXF4SIDH = 0x14
	regRXF5SIDH = 0x18

	regRXM0SIDH = 0x20
	regRXM1SIDH = 0x24

	regCANSTAT = 0x0E
	regCANCTRL = 0x0F

	regTEC = 0x1C
	regREC = 0x1D

	regCNF3    = 0x28
	regCNF2    = 0x29
	regCNF1    = 0x2A
	regCANINTE = 0x2B
	regCANINTF = 0x2C
	regEFLG    = 0x2D

	regTXB0CTRL = 0x30
	regTXB0SIDH = 0x31
	regTXB1CTRL = 0x40
	regTXB1SIDH = 0x41
	regTXB2CTRL = 0x50
	regTXB2SIDH = 0x51

	regRXB0CTRL = 0x60
	regRXB0SIDH = 0x61
	regRXB1CTRL = 0x70
	regRXB1SIDH = 0x71

	regRXB1D0 = 0x76 // RXB1Dn burst start; see readOne's documented quirk
	regRXB1D1 = 0x77
)

// filterBaseAddr maps filter index 0..5 to its RXFnSIDH address. Filters
// 0-1 gate RXB0, filters 2-5 gate RXB1 (§3).
var filterBaseAddr = [6]byte{regRXF0SIDH, regRXF1SIDH, regRXF2SIDH, regRXF3SIDH, regRXF4SIDH, regRXF5SIDH}

// maskBaseAddr maps mask index 0..1 (RXB0, RXB1) to its RXMnSIDH address.
var maskBaseAddr = [2]byte{regRXM0SIDH, regRXM1SIDH}

// txCtrlAddr/txSidhAddr index TX buffers 0..2 by ordinal, matching the
// fixed priority order {0,1,2} §4.G mandates.
var txCtrlAddr = [3]byte{regTXB0CTRL, regTXB1CTRL, regTXB2CTRL}
var txSidhAddr = [3]byte{regTXB0SIDH, regTXB1SIDH, regTXB2SIDH}

var rxCtrlAddr = [2]byte{regRXB0CTRL, regRXB1CTRL}
var rxSidhAddr = [2]byte{regRXB0SIDH, regRXB1SIDH}

// TXBnCTRL bits.
const (
	txCtrlTXREQ byte = 0x08
	txCtrlTXERR byte = 0x10
	txCtrlMLOA  byte = 0x20
	txCtrlABTF  byte = 0x40
)

// CANCTRL bits.
const (
	canctrlOSM  byte = 0x08
	canctrlABAT byte = 0x10
)

// EFLG bits.
const (
	eflgRX0OVR byte = 0x40
	eflgRX1OVR byte = 0x80
)

// RXB0CTRL bits (composite BUKT|BUKT1|FILHIT0 field occupies bits 2:0).
const (
	rxb0ctrlRXM  byte = 0x60 // bits 6:5, 11 = accept any
	rxb0ctrlBUKT byte = 0x04
)

const rxb1ctrlRXM byte = 0x60 // bits 6:5 on RXB1CTRL, same encoding
